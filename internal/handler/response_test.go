package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"bolx/internal/domain"
	"bolx/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no match", &domain.NoTemplateMatchError{BestTemplate: "acme", BestConfidence: 0.4, Threshold: 0.6}, http.StatusUnprocessableEntity, "NO_TEMPLATE_MATCH"},
		{"wrapped malformed", fmt.Errorf("%w: bad yaml", domain.ErrMalformedTemplate), http.StatusBadRequest, "MALFORMED_TEMPLATE"},
		{"invalid layout", domain.ErrInvalidLayout, http.StatusBadRequest, "INVALID_LAYOUT"},
		{"timeout", domain.ErrDocumentTimeout, http.StatusGatewayTimeout, "DOCUMENT_TIMEOUT"},
		{"unauthorized", fmt.Errorf("parsing token: %w", domain.ErrUnauthorized), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
