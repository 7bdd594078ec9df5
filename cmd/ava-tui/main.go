// ABOUTME: Terminal client for the ava chat gateway with persistent sessions.
// ABOUTME: Readline-style input, slash commands, and markdown-rendered replies.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/ava-client/internal/api"
	"github.com/2389/ava-client/internal/auth"
	"github.com/2389/ava-client/internal/config"
	"github.com/2389/ava-client/internal/conversation"
	"github.com/2389/ava-client/internal/render"
	"github.com/2389/ava-client/internal/session"
	"github.com/2389/ava-client/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the client config file.
// Priority: AVA_CONFIG env var > XDG_CONFIG_HOME/ava/config.yaml > ~/.config/ava/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("AVA_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "ava", "config.yaml")
}

// loadConfig loads the config file if one exists, otherwise the defaults.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("checking config file: %w", err)
	}
	return config.Load(path)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Logs go to stderr so they don't interleave with the chat itself
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func main() {
	configPath := flag.String("config", getConfigPath(), "Path to config file")
	server := flag.String("server", "", "Gateway server URL (overrides config)")
	startContext := flag.String("context", "", "Starting conversation context (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ava-tui %s\n", version)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *server, *startContext); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run(ctx context.Context, configPath, serverOverride, contextOverride string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serverOverride != "" {
		cfg.Server.URL = serverOverride
	}
	if contextOverride != "" {
		if !api.ValidContext(contextOverride) {
			return fmt.Errorf("unknown context %q (one of: %s)", contextOverride, strings.Join(api.Contexts, ", "))
		}
		cfg.Chat.DefaultContext = contextOverride
	}

	logger := setupLogger(cfg.Logging)

	tokenPath, err := cfg.TokenPath()
	if err != nil {
		return fmt.Errorf("resolving token path: %w", err)
	}
	creds, err := auth.NewTokenFile(tokenPath, logger)
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}
	themes := session.NewThemeFile(filepath.Join(filepath.Dir(tokenPath), "theme"))

	client := api.New(cfg.Server.URL, cfg.Server.Timeout, creds, logger)
	sess := session.New(client, creds, themes, logger)

	conv := conversation.New(client, logger)
	conv.SetPageSize(cfg.Chat.PageSize)
	conv.SetErrorTTL(cfg.Chat.ErrorTTL)

	if cfg.Cache.Path != "" {
		cache, err := store.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			logger.Warn("history cache unavailable", "path", cfg.Cache.Path, "error", err)
		} else {
			defer cache.Close()
			conv.SetCache(cache)
		}
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	cyan.Printf("ava-tui %s", version)
	gray.Printf("  (%s)\n", cfg.Server.URL)
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	// Resume a previous session if a usable token is persisted
	if err := sess.Restore(ctx); err != nil {
		logger.Debug("no session restored", "error", err)
	}

	for {
		if !sess.Authenticated() {
			ok, err := loginLoop(ctx, scanner, client, sess)
			if err != nil {
				return err
			}
			if !ok {
				return nil // user quit at the login prompt
			}
		}

		if user := sess.CurrentUser(); user != nil {
			fmt.Printf("Logged in as %s\n\n", user.Username)
		}

		// Show cached history immediately, then load the live list
		if err := conv.SeedFromCache(ctx); err != nil {
			logger.Debug("cache seed skipped", "error", err)
		}
		if err := conv.SetContext(ctx, cfg.Chat.DefaultContext); err != nil {
			logger.Warn("initial load failed", "error", err)
		}
		printConversation(conv)

		again, err := chatLoop(ctx, scanner, conv, sess)
		if err != nil || !again {
			return err
		}
		// Logged out; fall through to the login prompt
	}
}

// readLine reads one line of input, honoring context cancellation.
// Returns io.EOF when stdin closes.
func readLine(ctx context.Context, scanner *bufio.Scanner, prompt string) (string, error) {
	fmt.Print(prompt)

	inputCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		if scanner.Scan() {
			inputCh <- scanner.Text()
		} else {
			if err := scanner.Err(); err != nil {
				errCh <- err
			} else {
				errCh <- io.EOF
			}
		}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case input := <-inputCh:
		return input, nil
	}
}

// loginLoop prompts for credentials until a session is established.
// Returns false when the user quits instead of logging in.
func loginLoop(ctx context.Context, scanner *bufio.Scanner, client *api.Client, sess *session.Session) (bool, error) {
	fmt.Println("Not logged in. Enter credentials, /register to create an account, /quit to exit.")

	for {
		username, err := readLine(ctx, scanner, "username: ")
		if err != nil {
			return false, ignoreEOF(err)
		}
		username = strings.TrimSpace(username)

		switch username {
		case "":
			continue
		case "/quit", "/exit", "/q":
			return false, nil
		case "/register":
			if err := registerFlow(ctx, scanner, client, sess); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
					return false, ignoreEOF(err)
				}
				fmt.Printf("[error] %v\n\n", err)
				continue
			}
			return true, nil
		}

		password, err := readLine(ctx, scanner, "password: ")
		if err != nil {
			return false, ignoreEOF(err)
		}

		token, err := client.Login(ctx, username, password)
		if err != nil {
			fmt.Printf("[error] %v\n\n", friendlyAuthError(err))
			continue
		}
		if err := sess.Login(ctx, token.AccessToken); err != nil {
			fmt.Printf("[error] %v\n\n", err)
			continue
		}
		return true, nil
	}
}

// registerFlow collects the registration fields and logs the new account in.
func registerFlow(ctx context.Context, scanner *bufio.Scanner, client *api.Client, sess *session.Session) error {
	fields := []string{"username", "password", "email", "first name", "last name"}
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		v, err := readLine(ctx, scanner, f+": ")
		if err != nil {
			return err
		}
		values = append(values, strings.TrimSpace(v))
	}

	token, err := client.Register(ctx, values[0], values[1], values[2], values[3], values[4])
	if err != nil {
		return friendlyAuthError(err)
	}
	return sess.Login(ctx, token.AccessToken)
}

// chatLoop runs the interactive command loop. Returns true when the user
// logged out and wants to return to the login prompt.
func chatLoop(ctx context.Context, scanner *bufio.Scanner, conv *conversation.Store, sess *session.Session) (bool, error) {
	rend := render.New()

	for {
		input, err := readLine(ctx, scanner, fmt.Sprintf("[%s]> ", conv.Context()))
		if err != nil {
			return false, ignoreEOF(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch {
		case input == "/quit" || input == "/exit" || input == "/q":
			return false, nil

		case input == "/help":
			printHelp()
			fmt.Println()
			continue

		case input == "/contexts":
			fmt.Printf("Contexts: %s (current: %s)\n\n", strings.Join(api.Contexts, ", "), conv.Context())
			continue

		case strings.HasPrefix(input, "/context"):
			name := strings.TrimSpace(strings.TrimPrefix(input, "/context"))
			if name == "" {
				fmt.Printf("Current context: %s\n\n", conv.Context())
				continue
			}
			if !api.ValidContext(name) {
				fmt.Printf("Unknown context %q. One of: %s\n\n", name, strings.Join(api.Contexts, ", "))
				continue
			}
			if err := conv.SetContext(ctx, name); err != nil {
				printNotice(conv)
				continue
			}
			printConversation(conv)
			continue

		case input == "/refresh":
			if err := conv.Refresh(ctx); err != nil {
				printNotice(conv)
				continue
			}
			printConversation(conv)
			continue

		case input == "/edit":
			if err := editFlow(ctx, scanner, conv); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
					return false, ignoreEOF(err)
				}
			}
			printNotice(conv)
			printConversation(conv)
			continue

		case strings.HasPrefix(input, "/delete"):
			arg := strings.TrimSpace(strings.TrimPrefix(input, "/delete"))
			id, convErr := strconv.ParseInt(arg, 10, 64)
			if arg == "" || convErr != nil {
				fmt.Println("Usage: /delete <message-id>")
				fmt.Println()
				continue
			}
			if err := conv.Delete(ctx, id); err != nil {
				printNotice(conv)
				continue
			}
			printConversation(conv)
			continue

		case strings.HasPrefix(input, "/action"):
			actionType := strings.TrimSpace(strings.TrimPrefix(input, "/action"))
			if actionType == "" {
				fmt.Println("Usage: /action <type>")
				fmt.Println()
				continue
			}
			if err := conv.InvokeAction(ctx, actionType); err != nil {
				printNotice(conv)
				continue
			}
			printConversation(conv)
			continue

		case input == "/whoami":
			if user := sess.CurrentUser(); user != nil {
				fmt.Printf("%s <%s> (%s %s)\n\n", user.Username, user.Email, user.FirstName, user.LastName)
			}
			continue

		case input == "/logout":
			sess.Logout()
			fmt.Println("Logged out.")
			fmt.Println()
			return true, nil

		case strings.HasPrefix(input, "/"):
			fmt.Printf("Unknown command %s. /help for commands.\n\n", input)
			continue
		}

		// Anything else is a chat message
		printSending()
		if err := conv.Send(ctx, input); err != nil {
			printNotice(conv)
			continue
		}
		printLatest(conv, rend)
	}
}

// editFlow edits the most recent editable user message: show the current
// text, read a replacement, and save it. An empty replacement deletes.
func editFlow(ctx context.Context, scanner *bufio.Scanner, conv *conversation.Store) error {
	var target *conversation.Message
	messages := conv.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role == api.RoleUser && !m.IsDeleted && !m.IsEdited && !m.Pending {
			target = &m
			break
		}
	}
	if target == nil {
		fmt.Println("No editable message.")
		return nil
	}

	if err := conv.BeginEdit(target.ID); err != nil {
		return err
	}

	fmt.Printf("Editing #%d: %s\n", target.ID, target.Content)
	replacement, err := readLine(ctx, scanner, "new text (empty deletes): ")
	if err != nil {
		return err
	}

	if err := conv.ChangeDraft(target.ID, replacement); err != nil {
		return err
	}
	return conv.SaveEdit(ctx, target.ID)
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /context <name>  Switch conversation context")
	fmt.Println("  /contexts        List available contexts")
	fmt.Println("  /edit            Edit your most recent message")
	fmt.Println("  /delete <id>     Delete a message by id")
	fmt.Println("  /action <type>   Trigger a quick action")
	fmt.Println("  /refresh         Reload the conversation")
	fmt.Println("  /whoami          Show the logged-in user")
	fmt.Println("  /logout          Log out and clear the saved token")
	fmt.Println("  /help            Show this help")
	fmt.Println("  /quit            Exit")
}

func printSending() {
	color.New(color.FgHiBlack).Println("sending...")
}

// printNotice surfaces the store's user-facing error, if one is active.
func printNotice(conv *conversation.Store) {
	if msg := conv.LastError(); msg != "" {
		color.New(color.FgRed).Printf("[error] %s\n", msg)
		fmt.Println()
	}
}

// printConversation redraws the full message list for the active context.
func printConversation(conv *conversation.Store) {
	rend := render.New()
	messages := conv.Messages()
	if len(messages) == 0 {
		color.New(color.FgHiBlack).Println("(no messages yet)")
		fmt.Println()
		return
	}
	for _, m := range messages {
		printMessage(m, rend)
	}
	fmt.Println()
	printNotice(conv)
}

// printLatest shows only what the last exchange added: everything from the
// final user message onward.
func printLatest(conv *conversation.Store, rend *render.Renderer) {
	messages := conv.Messages()
	start := 0
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == api.RoleUser {
			start = i
			break
		}
	}
	for _, m := range messages[start:] {
		printMessage(m, rend)
	}
	fmt.Println()
	printNotice(conv)
}

func printMessage(m conversation.Message, rend *render.Renderer) {
	gray := color.New(color.FgHiBlack)

	switch m.Role {
	case api.RoleUser:
		gray.Printf("#%d ", m.ID)
		color.New(color.FgGreen, color.Bold).Print("you> ")
		fmt.Print(m.Content)
		if m.IsEdited {
			gray.Print(" (edited)")
		}
		if m.Pending {
			gray.Print(" (sending)")
		}
		fmt.Println()
	case api.RoleAssistant:
		gray.Printf("#%d ", m.ID)
		color.New(color.FgCyan, color.Bold).Println("ava>")
		fmt.Println(rend.Render(m.Content))
	default:
		gray.Printf("#%d [%s] %s\n", m.ID, m.Role, m.Content)
	}
}

// friendlyAuthError maps gateway error classes onto login-prompt wording.
func friendlyAuthError(err error) error {
	switch {
	case errors.Is(err, api.ErrAuth):
		return errors.New("invalid username or password")
	case errors.Is(err, api.ErrValidation):
		return err
	case errors.Is(err, api.ErrNetwork):
		return errors.New("cannot reach the gateway; is it running?")
	default:
		return err
	}
}

// ignoreEOF treats stdin closing or Ctrl+C as a normal exit.
func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
