// Package editor turns member edits into upload requests for the sheet's
// Apps Script endpoint.
//
// # Overview
//
// A [Session] owns the family data being edited, an [Uploader] and an
// optional [Journal]. Every operation builds a [Payload] addressed by
// 1-based sheet row and column, records it in the journal, and sends it.
//
// [Session.Save] updates the in-memory member optimistically before the
// upload. A failed upload is reported as UPLOAD_FAILED and left in the
// journal as "failed"; the local change is kept. [Session.Replay] resends
// failed entries.
//
// # Row arithmetic
//
// Member "mem_N" lives on sheet row N+2 (row 1 is the header). For
// addChild and addSpouse the payload row is the row the new record is
// inserted after.
package editor
