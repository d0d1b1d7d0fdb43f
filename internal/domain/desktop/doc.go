/*
Package desktop composes the window registry, surface, launcher and
application contents into one desktop per user.

# Desktop

A Desktop restores its window layout from local persistence on creation
and autosaves it through the debounced writer after every registry change.
Hidden applications (the secret room) stay closed until the terminal key or
a game win unlocks them. Reset closes every window, relocks the secret and
clears all persisted keys.

# Manager

Manager maps user ids to live desktops and stores named workspace
snapshots:

	manager := desktop.NewManager(opts, persist.NewSQLWorkspaces(db)).WithMetrics(metrics)
	d := manager.Get(userID, email)
	session, err := manager.Save(ctx, userID, "evening", "")
	_, err = manager.Restore(ctx, userID, session.ID)
*/
package desktop
