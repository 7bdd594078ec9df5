// Package auth handles the client's durable bearer credential: a single
// token file under the user config directory, plus local JWT claim
// inspection so an obviously expired token can be discarded without a
// network round trip.
package auth
