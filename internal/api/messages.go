// ABOUTME: Message CRUD and click-action endpoints of the gateway client
// ABOUTME: All calls are context-scoped and require a bearer token

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// GetMessages fetches a page of messages for the given conversation context.
// The gateway returns them in chronological order with deleted messages
// already excluded.
func (c *Client) GetMessages(ctx context.Context, skip, limit int, conversationContext string) ([]Message, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("context", conversationContext)

	var messages []Message
	if err := c.doJSON(ctx, http.MethodGet, "/messages/", query, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// sendMessageRequest is the JSON body for POST /messages/.
type sendMessageRequest struct {
	Content string `json:"content"`
	Role    string `json:"role"`
	Context string `json:"context"`
}

// SendMessage persists a new message and returns the stored record.
// The gateway may append an assistant reply as a side effect; callers that
// care about it re-fetch the context afterwards.
func (c *Client) SendMessage(ctx context.Context, content, role, conversationContext string) (*Message, error) {
	body := sendMessageRequest{Content: content, Role: role, Context: conversationContext}

	var msg Message
	if err := c.doJSON(ctx, http.MethodPost, "/messages/", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// updateMessageRequest is the JSON body for PUT /messages/{id}.
type updateMessageRequest struct {
	Content string `json:"content"`
}

// UpdateMessage replaces a message's content and returns the updated record.
// Fails with ErrNotFound when the id is absent or not owned by the caller.
func (c *Client) UpdateMessage(ctx context.Context, id int64, content string) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/messages/%d", id)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, updateMessageRequest{Content: content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage deletes a message and returns the deleted record.
// Fails with ErrNotFound when the id is absent or not owned by the caller.
func (c *Client) DeleteMessage(ctx context.Context, id int64) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/messages/%d", id)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// clickActionRequest is the JSON body for POST /messages/click_action.
type clickActionRequest struct {
	ActionType string `json:"action_type"`
	Context    string `json:"context"`
}

// ClickAction asks the gateway to synthesize an assistant message for a
// structured action in the given context. Fails with ErrValidation on an
// unknown action type.
func (c *Client) ClickAction(ctx context.Context, actionType, conversationContext string) (*Message, error) {
	body := clickActionRequest{ActionType: actionType, Context: conversationContext}

	var msg Message
	if err := c.doJSON(ctx, http.MethodPost, "/messages/click_action", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
