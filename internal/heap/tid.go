package heap

import "github.com/tuannm99/pagedb/internal/storage"

// TID (Tuple ID) is row identity inside a heap file:
// PageID: logical page id
// Slot  : slot index within the page
type TID struct {
	PageID storage.PageID
	Slot   uint16
}
