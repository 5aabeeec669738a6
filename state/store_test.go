package state

import (
	"sync"
	"testing"
	"time"

	"creatorpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection(t *testing.T) {
	s := NewSelection()
	assert.True(t, s.Toggle(3))
	s.Add(1, 2)
	assert.False(t, s.Toggle(2))
	assert.Equal(t, []int64{1, 3}, s.IDs())
	assert.True(t, s.Has(1))

	s.Remove(1)
	assert.Equal(t, 1, s.Len())
	s.Clear()
	assert.Empty(t, s.IDs())
}

func TestFlags(t *testing.T) {
	f := NewFlags()
	done, err := f.TryBegin("mass-email")
	require.NoError(t, err)
	assert.True(t, f.Active("mass-email"))

	_, err = f.TryBegin("mass-email")
	assert.ErrorIs(t, err, ErrBusy)

	other, err := f.TryBegin("status:4")
	require.NoError(t, err)
	assert.Equal(t, []string{"mass-email", "status:4"}, f.Keys())

	done()
	done()
	other()
	assert.False(t, f.Active("mass-email"))
	assert.Empty(t, f.Keys())
}

func TestFlags_ConcurrentBegin(t *testing.T) {
	f := NewFlags()
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.TryBegin("dm"); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func TestStore(t *testing.T) {
	t.Run("get or create reuses live pages", func(t *testing.T) {
		store := NewStore(time.Minute)
		sess := store.GetOrCreate("")
		require.NotEmpty(t, sess.ID)
		assert.Same(t, sess, store.GetOrCreate(sess.ID))
		assert.NotSame(t, sess, store.GetOrCreate("unknown"))
	})

	t.Run("expired pages are dropped", func(t *testing.T) {
		store := NewStore(time.Millisecond)
		sess := store.Create()
		time.Sleep(5 * time.Millisecond)
		_, ok := store.Get(sess.ID)
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("delete", func(t *testing.T) {
		store := NewStore(time.Minute)
		sess := store.Create()
		store.Delete(sess.ID)
		_, ok := store.Get(sess.ID)
		assert.False(t, ok)
	})
}

func TestPage_SelectClientClearsSelection(t *testing.T) {
	sess := newPage("s")
	first, second := int64(1), int64(2)

	sess.SelectClient(&first)
	sess.Selection.Add(10, 11)
	sess.SelectClient(&first)
	assert.Equal(t, 2, sess.Selection.Len(), "same client keeps the selection")

	sess.SelectClient(&second)
	assert.Equal(t, 0, sess.Selection.Len())
	assert.Equal(t, int64(2), *sess.SelectedClient())

	sess.SelectClient(nil)
	assert.Nil(t, sess.SelectedClient())
}

func TestPage_Reset(t *testing.T) {
	sess := newPage("s")
	client := int64(7)
	sess.SelectClient(&client)
	sess.Selection.Add(1, 2)
	sess.Editor.Select(models.Template{ID: "welcome", Subject: "Hi", Body: "Hello ${creator_name}"})
	sess.Editor.SetRecipient("Jane")
	sess.Editor.SetInterpolateSubject(true)

	sess.Reset()
	assert.Nil(t, sess.SelectedClient())
	assert.Equal(t, 0, sess.Selection.Len())
	view := sess.Editor.View()
	assert.Empty(t, view.TemplateID)
	assert.Empty(t, view.Recipient)
	assert.Equal(t, Draft{}, view.Draft)
	assert.False(t, view.InterpolateSubject)
}
