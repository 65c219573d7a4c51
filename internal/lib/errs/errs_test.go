package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-karani/subscription-manager-api/internal/lib/errs"
)

func TestKindOf_Constructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Kind
	}{
		{
			name: "ошибка валидации",
			err:  errs.Validation("Invalid price format."),
			want: errs.KindValidation,
		},
		{
			name: "конфликт состояния",
			err:  errs.Conflictf("A plan with name '%s' already exists.", "Pro"),
			want: errs.KindConflict,
		},
		{
			name: "ресурс не найден",
			err:  errs.NotFound("Plan not found."),
			want: errs.KindNotFound,
		},
		{
			name: "доступ запрещен",
			err:  errs.Forbidden("Forbidden: Administrator access required for this resource."),
			want: errs.KindForbidden,
		},
		{
			name: "аутентификация не пройдена",
			err:  errs.Unauthorized("Invalid username or password."),
			want: errs.KindUnauthorized,
		},
		{
			name: "сбой хранилища",
			err:  errs.Storage("repository.CreatePlan", errors.New("connection refused")),
			want: errs.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.KindOf(tt.err))
		})
	}
}

func TestKindOf_WrappedError(t *testing.T) {
	inner := errs.Conflict("User is already subscribed to this plan.")
	wrapped := fmt.Errorf("services.subscription.Upgrade: %w", inner)

	assert.Equal(t, errs.KindConflict, errs.KindOf(wrapped))
	assert.True(t, errs.IsKind(wrapped, errs.KindConflict))
}

func TestKindOf_UnclassifiedError(t *testing.T) {
	err := errors.New("something unexpected")

	assert.Equal(t, errs.KindStorage, errs.KindOf(err))
}

func TestStorage_PreservesCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := errs.Storage("repository.InsertSubscription", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "repository.InsertSubscription")
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestIsKind_NilError(t *testing.T) {
	assert.False(t, errs.IsKind(nil, errs.KindNotFound))
}
