package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageResponse(t *testing.T) {
	p := NewPageResponse[string](nil, 1, 20, 0)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)

	p = NewPageResponse([]string{"a"}, 3, 20, 41)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPageResponse([]string{"a"}, 1, 20, 40)
	assert.Equal(t, 2, p.TotalPages)
}
