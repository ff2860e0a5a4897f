package bootstrap

import (
	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/handlers"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	link    *handlers.LinkHandler
	session *handlers.SessionHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(directory core.AccountDirectory, s serviceSet) handlerSet {
	return handlerSet{
		link:    handlers.NewLinkHandler(s.tickets, s.linker),
		session: handlers.NewSessionHandler(directory, s.refresher, s.tokens),
	}
}
