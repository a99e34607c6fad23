package jpegls

// Mapping tables (ITU-T T.87 C.2.4.1.2/1.3, used for palletised images):
// a table of sample-value entries, each entrySize bytes wide, accumulated
// across one LSE mapping-table-specification segment and zero or more LSE
// continuation segments.

// MappingTable accumulates one table's entries as they arrive across
// possibly-split LSE segments.
type MappingTable struct {
	TableID   byte
	EntrySize int
	data      []byte
	done      bool
}

// AppendSpecification starts (or restarts) a table from an initial LSE
// mapping-table-specification segment.
func (mt *MappingTable) AppendSpecification(tableID byte, entrySize int, entries []byte) error {
	if entrySize < 1 || entrySize > 255 {
		return newError(KindInvalidMarkerSegmentSize, "mapping table entry size out of range")
	}
	mt.TableID = tableID
	mt.EntrySize = entrySize
	mt.data = append([]byte(nil), entries...)
	mt.done = len(mt.data)%entrySize == 0
	return nil
}

// AppendContinuation appends more entry bytes from an LSE continuation
// segment for the same table ID.
func (mt *MappingTable) AppendContinuation(tableID byte, entries []byte) error {
	if tableID != mt.TableID {
		return newError(KindInvalidData, "mapping table continuation references unknown table id")
	}
	mt.data = append(mt.data, entries...)
	mt.done = len(mt.data)%mt.EntrySize == 0
	return nil
}

// Complete reports whether the accumulated byte count is a whole number of
// entries (continuation segments may arrive in arbitrary chunk sizes).
func (mt *MappingTable) Complete() bool { return mt.done }

// EntryCount returns the number of whole entries accumulated so far.
func (mt *MappingTable) EntryCount() int {
	if mt.EntrySize == 0 {
		return 0
	}
	return len(mt.data) / mt.EntrySize
}

// Entry returns the raw bytes of entry i.
func (mt *MappingTable) Entry(i int) []byte {
	start := i * mt.EntrySize
	return mt.data[start : start+mt.EntrySize]
}

// MappingTableSet collects every mapping table declared within a stream,
// keyed by table ID. It does not record which component selects which
// table; the per-component selectors from SOS are in
// DecodedImage.ComponentTableIDs.
type MappingTableSet struct {
	tables map[byte]*MappingTable
}

// NewMappingTableSet creates an empty set.
func NewMappingTableSet() *MappingTableSet {
	return &MappingTableSet{tables: make(map[byte]*MappingTable)}
}

// Specification registers (or replaces) a table from its specification
// segment.
func (s *MappingTableSet) Specification(tableID byte, entrySize int, entries []byte) error {
	mt := &MappingTable{}
	if err := mt.AppendSpecification(tableID, entrySize, entries); err != nil {
		return err
	}
	s.tables[tableID] = mt
	return nil
}

// Continuation appends to a previously specified table.
func (s *MappingTableSet) Continuation(tableID byte, entries []byte) error {
	mt, ok := s.tables[tableID]
	if !ok {
		return newError(KindInvalidData, "mapping table continuation before specification")
	}
	return mt.AppendContinuation(tableID, entries)
}

// Table returns the table for id, or nil if not present.
func (s *MappingTableSet) Table(id byte) *MappingTable { return s.tables[id] }
