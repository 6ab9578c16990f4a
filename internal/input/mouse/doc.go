// Package mouse provides the mouse event model shared by the editor and its
// plugins, and the conversion from terminal mouse reports.
//
// Terminals report the set of buttons held at each report rather than
// discrete press and release transitions. Translator keeps the previously
// held button so it can turn a stream of reports into Down, Drag, Up and
// Moved events.
package mouse
