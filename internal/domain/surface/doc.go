// Package surface turns the window registry into rendered frames and
// translates pointer gestures into registry calls.
//
// A frame is rendered for every open window in z-order. Minimized frames
// carry a placeholder body while their content stays suspended, so a
// minimized game stops its countdown without losing the round. Content is
// mounted once per open window; focus, move and resize never remount it.
package surface
