package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

func TestWithRetries_SucceedsAfterDuplicateKey(t *testing.T) {
	attempts := 0
	err := WithRetries(func() error {
		attempts++
		if attempts < 3 {
			return duplicateKeyError()
		}
		return nil
	}, DefaultMaxRetries, IsMongoDuplicateKeyError)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetries_NonDuplicateErrorReturnsImmediately(t *testing.T) {
	attempts := 0
	boom := errors.New("connection reset")
	err := WithRetries(func() error {
		attempts++
		return boom
	}, DefaultMaxRetries, IsMongoDuplicateKeyError)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestWithRetries_ExhaustedReturnsLastError(t *testing.T) {
	attempts := 0
	err := WithRetries(func() error {
		attempts++
		return duplicateKeyError()
	}, 2, IsMongoDuplicateKeyError)

	assert.Error(t, err)
	assert.True(t, IsMongoDuplicateKeyError(err))
	assert.Equal(t, 3, attempts)
}

func TestIsMongoDuplicateKeyError(t *testing.T) {
	assert.True(t, IsMongoDuplicateKeyError(duplicateKeyError()))
	assert.True(t, IsMongoDuplicateKeyError(mongo.CommandError{Code: 11000}))
	assert.False(t, IsMongoDuplicateKeyError(errors.New("something else")))
	assert.False(t, IsMongoDuplicateKeyError(nil))
	assert.False(t, IsMongoDuplicateKeyError(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 121, Message: "Document failed validation"}},
	}))
}
