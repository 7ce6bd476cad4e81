package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOKWithData(t *testing.T) {
	resp := StatusOKWithData(map[string]any{"id": 7})

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]any{"id": 7}, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something broke")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something broke", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name     string `validate:"required"`
		Email    string `validate:"required,email"`
		Role     string `validate:"omitempty,oneof=customer worker admin"`
		Quantity int    `validate:"gte=0"`
		Price    int    `validate:"omitempty,gt=0"`
	}

	tests := []struct {
		name  string
		input payload
		want  []string
	}{
		{
			name:  "missing required fields",
			input: payload{},
			want: []string{
				"field Name is a required field",
				"field Email is a required field",
			},
		},
		{
			name:  "invalid email",
			input: payload{Name: "Asha", Email: "not-an-email"},
			want:  []string{"field Email must be a valid email"},
		},
		{
			name:  "value outside oneof set",
			input: payload{Name: "Asha", Email: "asha@example.com", Role: "superuser"},
			want:  []string{"field Role must be one of: customer worker admin"},
		},
		{
			name:  "negative quantity",
			input: payload{Name: "Asha", Email: "asha@example.com", Quantity: -1},
			want:  []string{"field Quantity must be at least 0"},
		},
		{
			name:  "non-positive price",
			input: payload{Name: "Asha", Email: "asha@example.com", Price: -5},
			want:  []string{"field Price must be greater than 0"},
		},
	}

	validate := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.input)
			require.Error(t, err)

			resp := ValidationError(err.(validator.ValidationErrors))

			assert.Equal(t, StatusError, resp.Status)
			for _, want := range tt.want {
				assert.Contains(t, resp.Error, want)
			}
		})
	}
}
