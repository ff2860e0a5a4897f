package rpcerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, codes.OK, CodeOf(nil))
	assert.Equal(t, codes.InvalidArgument, CodeOf(InvalidArgument("missing %s", "oauthCode")))
	assert.Equal(t, codes.NotFound, CodeOf(NotFound("link code not found")))
	assert.Equal(t, codes.Unauthenticated, CodeOf(Unauthenticated(nil, "rejected")))
	assert.Equal(t, codes.ResourceExhausted, CodeOf(Capacity("exhausted")))
	assert.Equal(t, codes.Internal, CodeOf(errors.New("boom")))

	wrapped := fmt.Errorf("outer: %w", NotFound("inner"))
	assert.Equal(t, codes.NotFound, CodeOf(wrapped))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	cause := errors.New("disk full")
	err := Wrap(cause, "write %s", "ticket")
	assert.Equal(t, codes.Internal, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "write ticket", MessageOf(err))

	classified := Unauthenticated(cause, "provider rejected grant")
	assert.Same(t, classified, Wrap(classified, "ignored"))
}

func TestGRPCStatus(t *testing.T) {
	st, ok := status.FromError(NotFound("link code %s not found", "ABCD"))
	assert.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "link code ABCD not found", st.Message())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(codes.InvalidArgument))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(codes.NotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(codes.Unauthenticated))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(codes.ResourceExhausted))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(codes.Internal))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(codes.Unknown))
}

func TestMessageOf_Unclassified(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("secret detail")))
	assert.Equal(t, "INTERNAL", Kind(CodeOf(errors.New("x"))))
	assert.Equal(t, "CAPACITY", Kind(codes.ResourceExhausted))
}
