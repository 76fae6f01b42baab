package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusMessageFulfilled(t *testing.T) {
	subject, body := StatusMessage("fulfilled", "Jordan Lee", "O+", 2)

	assert.Contains(t, subject, "Fulfilled")
	assert.Contains(t, body, "Jordan Lee")
	assert.Contains(t, body, "O+")
	assert.Contains(t, body, "2")
}

func TestStatusMessageCancelled(t *testing.T) {
	subject, body := StatusMessage("cancelled", "Jordan Lee", "A-", 1)

	assert.Contains(t, subject, "Cancelled")
	assert.Contains(t, body, "A-")
}

func TestStatusMessagesDifferByStatus(t *testing.T) {
	_, fulfilled := StatusMessage("fulfilled", "J", "O+", 1)
	_, cancelled := StatusMessage("cancelled", "J", "O+", 1)
	_, pending := StatusMessage("pending", "J", "O+", 1)

	assert.NotEqual(t, fulfilled, cancelled)
	assert.NotEqual(t, fulfilled, pending)
	assert.NotEqual(t, cancelled, pending)
}

func TestVerificationMessageCarriesCode(t *testing.T) {
	subject, body := VerificationMessage("482913")

	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "482913")
}

func TestReminderMessageCarriesDate(t *testing.T) {
	date := time.Date(2025, time.July, 4, 9, 0, 0, 0, time.UTC)
	subject, body := ReminderMessage("Jordan Lee", date)

	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "Jordan Lee")
	assert.Contains(t, body, "2025")
}
