package toolbox

import (
	"testing"

	"github.com/itchan-dev/filemsg/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupOf(t *testing.T) {
	testCases := []struct {
		room domain.Room
		want Group
	}{
		{domain.Room{Type: domain.RoomTypeChannel}, GroupChannel},
		{domain.Room{Type: domain.RoomTypePrivate}, GroupPrivate},
		{domain.Room{Type: domain.RoomTypeLive}, GroupLive},
		{domain.Room{Type: domain.RoomTypeDirect, Members: []string{"a", "b"}}, GroupDirect},
		{domain.Room{Type: domain.RoomTypeDirect, Members: []string{"a", "b", "c"}}, GroupDirectMultiple},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, GroupOf(&tc.room), "room type %s", tc.room.Type)
	}
}

func TestForRoom(t *testing.T) {
	r := New()
	r.Add("files", ActionConfig{Id: "files", Title: "Files", Order: 2, Groups: []Group{GroupChannel, GroupPrivate}})
	r.Add("info", ActionConfig{Id: "info", Title: "Info", Order: 1, Groups: []Group{GroupChannel, GroupDirect}})
	r.Add("members", ActionConfig{Id: "members", Title: "Members", Order: 2, Groups: []Group{GroupChannel}})
	r.Add("call", Hook(func(room *domain.Room) *ActionConfig {
		if room.Name == "quiet" {
			return nil
		}
		return &ActionConfig{Id: "call", Title: "Call", Order: 0, Groups: []Group{GroupChannel}}
	}))

	ids := func(actions []ActionConfig) []string {
		var out []string
		for _, a := range actions {
			out = append(out, a.Id)
		}
		return out
	}

	channel := &domain.Room{Id: "r1", Type: domain.RoomTypeChannel}
	assert.Equal(t, []string{"call", "info", "files", "members"}, ids(r.ForRoom(channel)))

	quiet := &domain.Room{Id: "r2", Type: domain.RoomTypeChannel, Name: "quiet"}
	assert.Equal(t, []string{"info", "files", "members"}, ids(r.ForRoom(quiet)))

	direct := &domain.Room{Id: "r3", Type: domain.RoomTypeDirect}
	assert.Equal(t, []string{"info"}, ids(r.ForRoom(direct)))

	live := &domain.Room{Id: "r4", Type: domain.RoomTypeLive}
	assert.Empty(t, r.ForRoom(live))
	assert.Nil(t, r.ForRoom(nil))
}

func TestDelete(t *testing.T) {
	r := New()
	r.Add("info", ActionConfig{Id: "info"})
	assert.True(t, r.Delete("info"))
	assert.False(t, r.Delete("info"))
	assert.Empty(t, r.Snapshot())
}

func TestSubscribe(t *testing.T) {
	r := New()
	ch, cancel := r.Subscribe()

	r.Add("a", ActionConfig{Id: "a"})
	r.Add("b", ActionConfig{Id: "b"})

	// Only the latest snapshot is kept for a slow reader.
	snapshot := <-ch
	assert.Len(t, snapshot, 2)
	select {
	case s := <-ch:
		t.Fatalf("unexpected extra snapshot %v", s)
	default:
	}

	r.Delete("missing")
	snapshot = <-ch
	assert.Len(t, snapshot, 2, "delete notifies even when nothing was removed")

	// Snapshots are copies.
	r.Add("c", ActionConfig{Id: "c"})
	assert.Len(t, snapshot, 2)

	cancel()
	cancel()
	_, open := <-drain(ch)
	require.False(t, open)
}

// drain empties buffered snapshots and returns the channel for a close check.
func drain(ch <-chan Snapshot) <-chan Snapshot {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return ch
			}
		default:
			return ch
		}
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := New()
	RegisterDefaults(r)

	ids := func(room *domain.Room) []string {
		var out []string
		for _, a := range r.ForRoom(room) {
			out = append(out, a.Id)
		}
		return out
	}

	assert.Equal(t, []string{"upload-file", "uploaded-files-list", "members-list"}, ids(&domain.Room{Type: domain.RoomTypeChannel}))
	assert.Equal(t, []string{"uploaded-files-list", "canned-responses"}, ids(&domain.Room{Type: domain.RoomTypeLive}))
	assert.Equal(t, []string{"upload-file", "uploaded-files-list"}, ids(&domain.Room{Type: domain.RoomTypeDirect, Members: []string{"a", "b"}}))
}
