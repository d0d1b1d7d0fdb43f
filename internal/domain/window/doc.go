/*
Package window is the authoritative registry of open desktop windows.

Each open application owns one entry (position and size). The registry also
keeps the focus order, whose last element is the topmost window, and the set
of minimized windows. Stacking values are derived from the focus order on
every read and are never stored.

	r := window.NewRegistry(catalog)
	r.Open("terminal")
	r.Move("terminal", types.WindowPosition{X: 150, Y: 80})
	r.Minimize("terminal") // keeps its place in the focus order
	r.Minimize("terminal") // restores and focuses

Observers registered with Subscribe run after each effective transition in
the order transitions were applied.
*/
package window
