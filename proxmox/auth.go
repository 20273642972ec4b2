package proxmox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const endpointAccessTicket = "/access/ticket"

// Credentials identify a user within an authentication realm.
type Credentials struct {
	Username string
	Realm    string
	Password string
}

// Principal is the user@realm form expected by the API.
func (c Credentials) Principal() string {
	return c.Username + "@" + c.Realm
}

// Session is the ticket pair issued by /access/ticket.
type Session struct {
	Ticket    string
	CSRFToken string
}

// Valid reports whether both tokens are present.
func (s *Session) Valid() bool {
	return s != nil && s.Ticket != "" && s.CSRFToken != ""
}

// Cookie is the value of the Cookie header carrying the ticket.
func (s *Session) Cookie() string {
	return "PVEAuthCookie=" + s.Ticket
}

type ticketData struct {
	Ticket              string `json:"ticket"`
	CSRFPreventionToken string `json:"CSRFPreventionToken"`
}

// Login exchanges credentials for a Session. It never returns a session with
// a missing ticket or CSRF token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	log.Info("Attempting to log in...")

	data, err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: endpointAccessTicket,
		form: url.Values{
			"username": {creds.Principal()},
			"password": {creds.Password},
		},
	})
	if err != nil {
		return nil, err
	}

	var ticket ticketData
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, errors.WithMessagef(ErrDecode, "login data: %v", err)
	}

	session := &Session{Ticket: ticket.Ticket, CSRFToken: ticket.CSRFPreventionToken}
	if !session.Valid() {
		return nil, ErrAuthDataMissing
	}

	log.Infof("Login successful for %s.", creds.Principal())
	return session, nil
}
