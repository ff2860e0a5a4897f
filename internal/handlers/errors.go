package handlers

import (
	"github.com/go-authgate/devicelink/internal/rpcerr"

	"github.com/gin-gonic/gin"
)

// errCorruptPayload is returned for request bodies that are not valid JSON
// of the expected shape.
var errCorruptPayload = rpcerr.InvalidArgument("Invalid/corrupt data")

// respondError renders err as {"error": KIND, "message": ...} with the HTTP
// status of its kind.
func respondError(c *gin.Context, err error) {
	code := rpcerr.CodeOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(rpcerr.HTTPStatus(code), gin.H{
		"error":   rpcerr.Kind(code),
		"message": rpcerr.MessageOf(err),
	})
}
