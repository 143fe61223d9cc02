package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	t.Cleanup(func() { SetEmojiDisabled(false) })

	SetEmojiDisabled(false)
	if got := GetEmoji("success"); got != "✅" {
		t.Errorf("GetEmoji(success) = %q", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Fatal("expected emoji to be disabled")
	}
	if got := GetEmoji("success"); got != "[OK]" {
		t.Errorf("GetEmoji(success) with fallback = %q", got)
	}
	if got := GetEmoji("no-such-key"); got != "[?]" {
		t.Errorf("GetEmoji(unknown) = %q", got)
	}
}
