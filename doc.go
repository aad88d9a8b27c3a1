// Package pagecursor provides a client-side cursor over a paginated remote
// collection.
//
// Overview
//
// A PagedCursor keeps one page of records (the window) in memory together
// with an index into it and the page metadata reported by the remote side.
// Navigation moves the index inside the window and transparently loads the
// neighbouring page when a page boundary is crossed:
//   - Next/Prev: step one record, crossing page boundaries when needed.
//   - First/Last/Goto: absolute positioning by global offset.
//   - Search/FindBy: replace the filter and reload from the first page.
//   - Insert/Update/Delete: mutate the remote collection and reconcile the
//     window either in place (ReconcilePatch) or by re-fetching the page
//     (ReconcileReload).
//
// Key concepts
//   - RemoteCollection: the injected collaborator performing the actual
//     list/create/replace/remove calls. GORMCollection and HTTPCollection are
//     ready-made implementations; NewHandler serves any collection over HTTP.
//   - Result: every network-touching operation returns a uniform envelope
//     instead of an error.
//   - Config: construction-time options (page size, primary key, strategy).
//
// A cursor is meant to be driven by a single caller. Overlapping calls are
// rejected with ErrBusy rather than interleaved.
package pagecursor
