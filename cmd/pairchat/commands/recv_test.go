package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/crypto"
	"pairchat/internal/domain"
	"pairchat/internal/store"
	"pairchat/internal/transport/mailbox"
)

func msg(out domain.Outbound) mailbox.Message {
	return mailbox.Message{ID: "m", Outbound: out}
}

func TestRender_SealedConversation(t *testing.T) {
	ks := store.NewKeyFileStore(t.TempDir(), "pw")
	var key domain.SessionKey
	for i := range key {
		key[i] = byte(i * 7)
	}

	found := domain.Notice("alice", domain.NoticePartnerFound)
	found.Key = key.String()
	line, err := render(ks, "alice", msg(found))
	require.NoError(t, err)
	assert.Equal(t, "* "+domain.NoticePartnerFound, line)

	sealed, err := crypto.Seal(key, "привет")
	require.NoError(t, err)
	line, err = render(ks, "alice", msg(domain.Outbound{To: "alice", Kind: domain.KindText, Body: sealed, Sealed: true}))
	require.NoError(t, err)
	assert.Equal(t, "partner: привет", line)

	_, err = render(ks, "alice", msg(domain.Notice("alice", domain.NoticePartnerLeft)))
	require.NoError(t, err)
	_, ok, err := ks.LoadKey("alice")
	require.NoError(t, err)
	assert.False(t, ok, "key forgotten when the chat ends")

	line, err = render(ks, "alice", msg(domain.Outbound{To: "alice", Kind: domain.KindText, Body: sealed, Sealed: true}))
	require.NoError(t, err)
	assert.Equal(t, "partner: "+domain.PlaceholderDecode, line)
}

func TestRender_PlainText(t *testing.T) {
	ks := store.NewKeyFileStore(t.TempDir(), "")
	line, err := render(ks, "bob", msg(domain.Outbound{To: "bob", Kind: domain.KindText, Body: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, "partner: hi", line)
}

func TestRender_BadKeyInNotice(t *testing.T) {
	ks := store.NewKeyFileStore(t.TempDir(), "")
	found := domain.Notice("bob", domain.NoticePartnerFound)
	found.Key = "not-a-key"
	_, err := render(ks, "bob", msg(found))
	assert.Error(t, err)
}
