package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPool_InvalidConnString(t *testing.T) {
	_, err := NewPool("not-a-conn-string", 5, time.Minute, time.Hour)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse connection string")
}
