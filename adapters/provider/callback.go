package provider

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// callbackPayload is what the provider posts back to the loopback
// server when the user finishes the interactive login.
type callbackPayload struct {
	UserPublicKey []byte   `json:"user_public_key" binding:"required"`
	Delegations   []string `json:"delegations" binding:"required"`
}

// awaitCallback serves the loopback callback endpoint, opens the login
// page pointed at it, and waits for the provider to post the issued
// delegation or for ctx to end.
func (c *Client) awaitCallback(ctx context.Context, loginURL func(redirect string) string) (callbackPayload, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	received := make(chan callbackPayload, 1)
	router.POST("/callback", func(gc *gin.Context) {
		var payload callbackPayload
		if err := gc.ShouldBindJSON(&payload); err != nil {
			gc.JSON(http.StatusBadRequest, gin.H{"error": "invalid callback payload"})
			return
		}
		select {
		case received <- payload:
		default:
		}
		gc.JSON(http.StatusOK, gin.H{"message": "login complete, you can close this window"})
	})

	listener, err := net.Listen("tcp", c.listen)
	if err != nil {
		return callbackPayload{}, fmt.Errorf("failed to bind callback listener: %w", err)
	}

	server := &http.Server{Handler: router}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			c.log.Debug().Err(err).Msg("callback server stopped")
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(sctx)
	}()

	redirect := fmt.Sprintf("http://%s/callback", listener.Addr())
	c.log.Info().Str("redirect", redirect).Msg("awaiting login callback")

	if err := c.open(loginURL(redirect)); err != nil {
		return callbackPayload{}, fmt.Errorf("failed to open login page: %w", err)
	}

	select {
	case payload := <-received:
		return payload, nil
	case <-ctx.Done():
		return callbackPayload{}, ctx.Err()
	}
}
