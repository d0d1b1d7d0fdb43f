// Package apps implements the window contents of the desktop: terminal,
// notepad, log viewer, node-connect game, file manager, storage admin and
// the hidden secret room.
//
// Every content type follows the same lifecycle. Mount runs once per open
// window, Suspend and Resume bracket a minimize, and Unmount runs on close.
// Contents that own background work (the game countdown) stop it on Suspend.
package apps
