package channel_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistry_SeedsGeneralAndRandom(t *testing.T) {
	r := channel.NewDefaultRegistry()

	channels := r.List()
	require.Len(t, channels, 2)
	assert.Equal(t, channel.Channel{ID: 1, Name: "general", Messages: []channel.Message{}}, channels[0])
	assert.Equal(t, channel.Channel{ID: 2, Name: "random", Messages: []channel.Message{}}, channels[1])
}

func TestCreate_ValidNamesAreStoredWithEmptyHistory(t *testing.T) {
	names := []string{"a", "dev", "Team_42", "with-hyphen", "ABCDEFGHIJKLMNO", "0_-"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			r := channel.NewDefaultRegistry()

			created, err := r.Create(name)
			require.NoError(t, err)

			got, ok := r.Get(created.ID)
			require.True(t, ok)
			assert.Equal(t, name, got.Name)
			assert.Empty(t, got.Messages)
			assert.NotNil(t, got.Messages)
		})
	}
}

func TestCreate_RejectsInvalidNamesUnderStrictPolicy(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty", "", "must not be empty"},
		{"too long", strings.Repeat("a", 16), "at most 15"},
		{"space", "a b", "letters, digits"},
		{"punctuation", "dev!", "letters, digits"},
		{"non ascii", "café", "letters, digits"},
		{"duplicate", "general", "already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := channel.NewDefaultRegistry()

			_, err := r.Create(tt.input)

			var ve *channel.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "name", ve.Field)
			assert.Contains(t, ve.Reason, tt.reason)
			assert.Equal(t, 2, r.Len())
		})
	}
}

func TestCreate_LenientPolicyOnlyRejectsEmpty(t *testing.T) {
	r, errs := channel.NewRegistry(channel.PolicyLenient, channel.DefaultSeeds...)
	require.Empty(t, errs)

	for _, name := range []string{"a b", strings.Repeat("x", 40), "general"} {
		_, err := r.Create(name)
		assert.NoError(t, err, name)
	}

	_, err := r.Create("")
	assert.True(t, channel.IsValidation(err))
	assert.Equal(t, 5, r.Len())
}

func TestCreate_IdsAreMonotonicAndNeverReused(t *testing.T) {
	r := channel.NewDefaultRegistry()

	dev, err := r.Create("dev")
	require.NoError(t, err)
	assert.Equal(t, channel.ID(3), dev.ID)

	require.True(t, r.Delete(dev.ID))
	assert.NotContains(t, channel.Names(r.List()), "dev")

	again, err := r.Create("dev")
	require.NoError(t, err)
	assert.Equal(t, channel.ID(4), again.ID)
}

func TestRename_PreservesIdAndHistory(t *testing.T) {
	r := channel.NewDefaultRegistry()
	require.NoError(t, r.AppendMessage(1, channel.Message{UserName: "al", Text: "hi"}))

	renamed, err := r.Rename(1, "lobby")
	require.NoError(t, err)
	assert.Equal(t, channel.ID(1), renamed.ID)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "lobby", got.Name)
	assert.Equal(t, []channel.Message{{UserName: "al", Text: "hi"}}, got.Messages)
	assert.Equal(t, []string{"lobby", "random"}, channel.Names(r.List()))
}

func TestRename_ReleasesOldNameAndAllowsOwnName(t *testing.T) {
	r := channel.NewDefaultRegistry()

	same, err := r.Rename(1, "general")
	require.NoError(t, err)
	assert.Equal(t, "general", same.Name)

	_, err = r.Rename(1, "lobby")
	require.NoError(t, err)

	_, err = r.Create("general")
	assert.NoError(t, err)
}

func TestRename_Errors(t *testing.T) {
	r := channel.NewDefaultRegistry()

	_, err := r.Rename(99, "whatever")
	var nf *channel.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, channel.ID(99), nf.ID)
	assert.ErrorIs(t, err, channel.ErrNotFound)

	_, err = r.Rename(1, "random")
	assert.True(t, channel.IsValidation(err))

	_, err = r.Rename(1, "bad name")
	assert.True(t, channel.IsValidation(err))

	got, _ := r.Get(1)
	assert.Equal(t, "general", got.Name)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := channel.NewDefaultRegistry()

	assert.True(t, r.Delete(2))
	assert.False(t, r.Delete(2))
	assert.False(t, r.Delete(42))

	_, ok := r.Get(2)
	assert.False(t, ok)
	assert.Equal(t, []string{"general"}, channel.Names(r.List()))
}

func TestAppendMessage(t *testing.T) {
	r := channel.NewDefaultRegistry()

	require.NoError(t, r.AppendMessage(1, channel.Message{UserName: "al", Text: "hi"}))
	require.NoError(t, r.AppendMessage(1, channel.Message{UserName: "bo", Text: "yo"}))

	err := r.AppendMessage(3, channel.Message{UserName: "al", Text: "hi"})
	assert.ErrorIs(t, err, channel.ErrNotFound)

	err = r.AppendMessage(1, channel.Message{UserName: "", Text: "hi"})
	assert.True(t, channel.IsValidation(err))

	err = r.AppendMessage(1, channel.Message{UserName: "al", Text: ""})
	assert.True(t, channel.IsValidation(err))

	general, _ := r.Get(1)
	random, _ := r.Get(2)
	assert.Equal(t, []channel.Message{{UserName: "al", Text: "hi"}, {UserName: "bo", Text: "yo"}}, general.Messages)
	assert.Empty(t, random.Messages)
}

func TestAppendMessage_DoesNotCopyHistory(t *testing.T) {
	r := channel.NewDefaultRegistry()
	msg := channel.Message{UserName: "u", Text: "t"}
	for i := 0; i < 20000; i++ {
		require.NoError(t, r.AppendMessage(1, msg))
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = r.AppendMessage(1, msg)
	})
	assert.Less(t, allocs, 1.0)
}

func TestGet_ReturnsCopies(t *testing.T) {
	r := channel.NewDefaultRegistry()
	require.NoError(t, r.AppendMessage(1, channel.Message{UserName: "al", Text: "hi"}))

	got, _ := r.Get(1)
	got.Name = "mutated"
	got.Messages[0].Text = "mutated"

	again, _ := r.Get(1)
	assert.Equal(t, "general", again.Name)
	assert.Equal(t, "hi", again.Messages[0].Text)
}

func TestRegistry_ConcurrentCreatesNeverShareIds(t *testing.T) {
	r := channel.NewDefaultRegistry()

	const workers = 50
	ids := make(chan channel.ID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch, err := r.Create(fmt.Sprintf("c%d", i))
			if err == nil {
				ids <- ch.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[channel.ID]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, workers+2, r.Len())
}

func TestRegistry_ConcurrentAppendAndDelete(t *testing.T) {
	r := channel.NewDefaultRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.AppendMessage(2, channel.Message{UserName: "u", Text: "t"})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Delete(2)
	}()
	wg.Wait()

	_, ok := r.Get(2)
	assert.False(t, ok)
}

func TestParseNamePolicy(t *testing.T) {
	p, err := channel.ParseNamePolicy("")
	require.NoError(t, err)
	assert.Equal(t, channel.PolicyStrict, p)

	p, err = channel.ParseNamePolicy(" Lenient ")
	require.NoError(t, err)
	assert.Equal(t, channel.PolicyLenient, p)

	_, err = channel.ParseNamePolicy("loose")
	assert.Error(t, err)
}

func TestNewRegistry_ReportsInvalidSeeds(t *testing.T) {
	r, errs := channel.NewRegistry(channel.PolicyStrict, "general", "bad seed", "general")
	assert.Len(t, errs, 2)
	assert.Equal(t, []string{"general"}, channel.Names(r.List()))
}

func TestNewRegistry_UnknownPolicyFallsBackToStrict(t *testing.T) {
	r, errs := channel.NewRegistry(channel.NamePolicy("lenent"), "general", "a b")

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "unknown channel name policy")
	assert.True(t, channel.IsValidation(errs[1]))
	assert.Equal(t, []string{"general"}, channel.Names(r.List()))

	_, err := r.Create("general")
	assert.True(t, channel.IsValidation(err))
}
