// Package smf reads Standard MIDI Files.
//
// Parse reads the header and copies each track chunk verbatim. Tracks are
// decoded lazily by TrackStream, which applies running status and ends
// with io.EOF after the End-Of-Track meta event. MergedStream interleaves
// several tracks by absolute time. Errors are *Error values classified by
// ErrorKind and match the package's sentinel errors with errors.Is.
package smf
