package server

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/SouradipPatra7904/KeyForge/pkg/logging"
)

// Command responses.
const (
	respOK           = "OK"
	respNotFound     = "NOT_FOUND"
	respDeleted      = "DELETED"
	respUpdated      = "UPDATED"
	respShuttingDown = "Server shutting down..."
	respAuthRequired = "ERROR: authentication required"
	respBadToken     = "ERROR: invalid token"
	respUnknown      = "ERROR: unknown command (valid: GET, PUT, UPDATE, DELETE, AUTH, SHUTDOWN)"
)

// action tells the connection loop what to do after a command.
type action int

const (
	actionNone action = iota
	actionShutdown
)

// execute runs one protocol command and returns the response line.
// authed tracks the connection's authentication state across commands.
func (s *Server) execute(line string, authed *bool, session *logging.SessionLogger) (string, action) {
	verb, rest := splitVerb(line)

	switch strings.ToUpper(verb) {
	case "GET":
		key := strings.TrimSpace(rest)
		if key == "" {
			return "ERROR: invalid GET format", actionNone
		}
		session.Debug(fmt.Sprintf("GET %s", key))
		if v, ok := s.config.Store.Get(key); ok {
			return v, actionNone
		}
		return respNotFound, actionNone

	case "PUT":
		if !*authed {
			session.Warn("unauthenticated PUT rejected")
			return respAuthRequired, actionNone
		}
		key, value, ok := splitKeyValue(rest)
		if !ok {
			return "ERROR: invalid PUT format", actionNone
		}
		s.config.Store.Put(key, value)
		session.Info(fmt.Sprintf("PUT %s", key))
		return respOK, actionNone

	case "UPDATE":
		if !*authed {
			session.Warn("unauthenticated UPDATE rejected")
			return respAuthRequired, actionNone
		}
		key, value, ok := splitKeyValue(rest)
		if !ok {
			return "ERROR: invalid UPDATE format", actionNone
		}
		if !s.config.Store.Update(key, value) {
			session.Debug(fmt.Sprintf("UPDATE %s: missing key", key))
			return respNotFound, actionNone
		}
		session.Info(fmt.Sprintf("UPDATE %s", key))
		return respUpdated, actionNone

	case "DELETE":
		if !*authed {
			session.Warn("unauthenticated DELETE rejected")
			return respAuthRequired, actionNone
		}
		key := strings.TrimSpace(rest)
		if key == "" {
			return "ERROR: invalid DELETE format", actionNone
		}
		if !s.config.Store.Delete(key) {
			session.Debug(fmt.Sprintf("DELETE %s: missing key", key))
			return respNotFound, actionNone
		}
		session.Info(fmt.Sprintf("DELETE %s", key))
		return respDeleted, actionNone

	case "AUTH":
		token := strings.TrimSpace(rest)
		if s.checkToken(token) {
			*authed = true
			session.Info("authentication succeeded")
			return respOK, actionNone
		}
		session.Warn("authentication failed")
		return respBadToken, actionNone

	case "SHUTDOWN":
		if !*authed {
			session.Warn("unauthenticated SHUTDOWN rejected")
			return respAuthRequired, actionNone
		}
		return respShuttingDown, actionShutdown

	default:
		session.Warn(fmt.Sprintf("unknown command %q", verb))
		return respUnknown, actionNone
	}
}

// checkToken compares the token against every configured bcrypt hash.
func (s *Server) checkToken(token string) bool {
	for _, hash := range s.config.AuthTokenHashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil {
			return true
		}
	}
	return false
}

// splitVerb splits a command line into its verb and the remainder.
func splitVerb(line string) (string, string) {
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

// splitKeyValue splits "key value with spaces" into key and value.
func splitKeyValue(rest string) (key, value string, ok bool) {
	rest = strings.TrimSpace(rest)
	i := strings.IndexByte(rest, ' ')
	if i <= 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
