package navbar_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/ui/navbar"
	"github.com/nvu/chatdeck/tests/testutil"
)

func TestNavbar_UnreadBadge(t *testing.T) {
	bar := navbar.New("chatdeck", 80, 10)
	require.NotContains(t, bar.View(), "unread")

	bar.SetUnread(3)
	require.Contains(t, bar.View(), "3 unread")
}

func TestNavbar_DropdownToggleAndLimit(t *testing.T) {
	bar := navbar.New("chatdeck", 80, 2)
	require.Empty(t, bar.ViewDropdown())

	bar.SetNotifications([]model.Notification{
		testutil.GroupMessage("c1", "Team"),
		testutil.DirectMessage("c2", "Sam Ortiz"),
		testutil.DirectMessage("c3", "Lee Park"),
	})
	bar.ToggleDropdown()
	require.True(t, bar.DropdownOpen())

	dropdown := bar.ViewDropdown()
	require.Contains(t, dropdown, "New message in Team")
	require.Contains(t, dropdown, "Sam Ortiz sent you a message")

	// Display bounded to the configured limit: the third notification
	// never appears.
	require.NotContains(t, dropdown, "Lee Park")

	bar.ToggleDropdown()
	require.Empty(t, bar.ViewDropdown())
}

func TestNavbar_EmptyDropdown(t *testing.T) {
	bar := navbar.New("chatdeck", 80, 10)
	bar.ToggleDropdown()
	require.Contains(t, strings.ToLower(bar.ViewDropdown()), "no notifications")
}
