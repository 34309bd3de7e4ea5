package index

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"

	"github.com/codemap-dev/codemap/internal/chunk"
	cmerrors "github.com/codemap-dev/codemap/internal/errors"
	"github.com/codemap-dev/codemap/internal/scanner"
)

// On-disk layout: fixed header, then the payload (sections followed by
// a table of contents). The header checksum covers the whole payload
// and is verified before any section is decoded.
const (
	magic         = "CMIX"
	formatVersion = 1
	headerSize    = 4 + 4 + 8 + 8 + 4

	IndexFileName = "index.bin"
	lockFileName  = "index.lock"
)

// Section names in the TOC.
const (
	sectionMeta   = "meta"
	sectionFiles  = "files"
	sectionChunks = "chunks"
	sectionGraph  = "graph"
)

// Save writes the state to dir atomically. The index directory is
// created if needed and a file lock serializes concurrent writers.
func Save(state *State, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cmerrors.FileIOError(dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return cmerrors.FileIOError(dir, err)
	}
	defer lock.Unlock()

	data, err := encode(state)
	if err != nil {
		return err
	}

	tmp := filepath.Join(dir, IndexFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return cmerrors.FileIOError(tmp, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, IndexFileName)); err != nil {
		os.Remove(tmp)
		return cmerrors.FileIOError(dir, err)
	}
	return nil
}

// Load reads the state from dir. A missing index yields (nil, nil); a
// corrupt one is a fatal error.
func Load(dir string) (*State, error) {
	lock := flock.New(filepath.Join(dir, lockFileName))
	if err := lock.RLock(); err != nil {
		return nil, cmerrors.FileIOError(dir, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(filepath.Join(dir, IndexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, cmerrors.FileIOError(dir, err)
	}
	return decode(data)
}

func encode(state *State) ([]byte, error) {
	// Chunk texts go into one compressed blob; file entries reference
	// offsets within the decompressed blob.
	var chunkBlob binWriter
	type chunkRef struct {
		offset, length int
	}
	chunkRefs := make(map[string][]chunkRef)
	for _, path := range state.Paths() {
		e := state.Files[path]
		refs := make([]chunkRef, len(e.Chunks))
		for i, c := range e.Chunks {
			refs[i] = chunkRef{offset: chunkBlob.buf.Len(), length: len(c.Text)}
			chunkBlob.buf.WriteString(c.Text)
		}
		chunkRefs[path] = refs
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	compressed := enc.EncodeAll(chunkBlob.data(), nil)
	enc.Close()

	var meta binWriter
	meta.str(state.Fingerprint)

	var files binWriter
	files.int(len(state.Files))
	for _, path := range state.Paths() {
		e := state.Files[path]
		files.str(e.Info.Path)
		files.uint(uint64(e.Info.Size))
		files.str(e.Info.Hash)
		files.str(e.Info.Language)
		files.str(string(e.Info.Role))
		files.float(e.DocLength)

		files.int(len(e.Chunks))
		for i, c := range e.Chunks {
			ref := chunkRefs[path][i]
			files.str(string(c.Kind))
			files.str(c.Name)
			files.int(c.StartLine)
			files.int(c.EndLine)
			files.int(ref.offset)
			files.int(ref.length)
		}

		files.int(len(e.Terms))
		for _, term := range sortedTerms(e.Terms) {
			f := e.Terms[term]
			files.str(term)
			files.uint(uint64(f.Filename))
			files.uint(uint64(f.Symbols))
			files.uint(uint64(f.Body))
		}

		files.int(len(e.Imports))
		for _, imp := range e.Imports {
			files.str(imp)
		}
	}

	var graphW binWriter
	graphW.int(len(state.Centrality))
	for _, path := range sortedKeys(state.Centrality) {
		graphW.str(path)
		graphW.float(state.Centrality[path])
	}
	graphW.int(len(state.Edges))
	for _, from := range sortedEdgeKeys(state.Edges) {
		graphW.str(from)
		graphW.int(len(state.Edges[from]))
		for _, to := range state.Edges[from] {
			graphW.str(to)
		}
	}

	// Assemble payload: sections then TOC.
	var payload binWriter
	type section struct {
		name string
		data []byte
	}
	sections := []section{
		{sectionMeta, meta.data()},
		{sectionFiles, files.data()},
		{sectionChunks, compressed},
		{sectionGraph, graphW.data()},
	}

	type tocEntry struct {
		name           string
		offset, length int
	}
	toc := make([]tocEntry, 0, len(sections))
	for _, s := range sections {
		toc = append(toc, tocEntry{s.name, payload.buf.Len(), len(s.data)})
		payload.buf.Write(s.data)
	}

	tocOffset := payload.buf.Len()
	payload.int(len(toc))
	for _, t := range toc {
		payload.str(t.name)
		payload.int(t.offset)
		payload.int(t.length)
	}

	body := payload.data()
	out := make([]byte, headerSize+len(body))
	copy(out[0:4], magic)
	binary.LittleEndian.PutUint32(out[4:8], formatVersion)
	binary.LittleEndian.PutUint64(out[8:16], xxhash.Sum64(body))
	binary.LittleEndian.PutUint64(out[16:24], uint64(tocOffset))
	binary.LittleEndian.PutUint32(out[24:28], uint32(len(toc)))
	copy(out[headerSize:], body)
	return out, nil
}

func decode(data []byte) (*State, error) {
	if len(data) < headerSize || string(data[0:4]) != magic {
		return nil, cmerrors.IndexCorruptError("bad magic", nil)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != formatVersion {
		return nil, cmerrors.IndexCorruptError("unsupported format version", nil)
	}

	body := data[headerSize:]
	wantSum := binary.LittleEndian.Uint64(data[8:16])
	if xxhash.Sum64(body) != wantSum {
		return nil, cmerrors.IndexCorruptError("checksum mismatch", nil)
	}

	tocOffset := binary.LittleEndian.Uint64(data[16:24])
	if tocOffset > uint64(len(body)) {
		return nil, cmerrors.IndexCorruptError("toc offset out of range", nil)
	}

	tr := newBinReader(body[tocOffset:])
	tocCount, err := tr.int()
	if err != nil {
		return nil, err
	}
	sections := make(map[string][]byte, tocCount)
	for i := 0; i < tocCount; i++ {
		name, err := tr.str()
		if err != nil {
			return nil, err
		}
		offset, err := tr.int()
		if err != nil {
			return nil, err
		}
		length, err := tr.int()
		if err != nil {
			return nil, err
		}
		if offset+length > len(body) {
			return nil, cmerrors.IndexCorruptError("section out of range", nil)
		}
		sections[name] = body[offset : offset+length]
	}

	state := NewState()

	mr := newBinReader(sections[sectionMeta])
	if state.Fingerprint, err = mr.str(); err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	chunkBlob, err := dec.DecodeAll(sections[sectionChunks], nil)
	if err != nil {
		return nil, cmerrors.IndexCorruptError("chunk section decompression failed", err)
	}

	fr := newBinReader(sections[sectionFiles])
	fileCount, err := fr.int()
	if err != nil {
		return nil, err
	}
	for i := 0; i < fileCount; i++ {
		e, err := decodeEntry(fr, chunkBlob)
		if err != nil {
			return nil, err
		}
		state.Add(e)
	}

	gr := newBinReader(sections[sectionGraph])
	centCount, err := gr.int()
	if err != nil {
		return nil, err
	}
	for i := 0; i < centCount; i++ {
		path, err := gr.str()
		if err != nil {
			return nil, err
		}
		score, err := gr.float()
		if err != nil {
			return nil, err
		}
		state.Centrality[path] = score
	}
	edgeCount, err := gr.int()
	if err != nil {
		return nil, err
	}
	for i := 0; i < edgeCount; i++ {
		from, err := gr.str()
		if err != nil {
			return nil, err
		}
		n, err := gr.int()
		if err != nil {
			return nil, err
		}
		tos := make([]string, 0, n)
		for j := 0; j < n; j++ {
			to, err := gr.str()
			if err != nil {
				return nil, err
			}
			tos = append(tos, to)
		}
		state.Edges[from] = tos
	}

	return state, nil
}

func decodeEntry(fr *binReader, chunkBlob []byte) (*FileEntry, error) {
	e := &FileEntry{Terms: make(map[string]FieldFreq)}

	var err error
	if e.Info.Path, err = fr.str(); err != nil {
		return nil, err
	}
	size, err := fr.uint()
	if err != nil {
		return nil, err
	}
	e.Info.Size = int64(size)
	if e.Info.Hash, err = fr.str(); err != nil {
		return nil, err
	}
	if e.Info.Language, err = fr.str(); err != nil {
		return nil, err
	}
	role, err := fr.str()
	if err != nil {
		return nil, err
	}
	e.Info.Role = scanner.Role(role)
	if e.DocLength, err = fr.float(); err != nil {
		return nil, err
	}

	chunkCount, err := fr.int()
	if err != nil {
		return nil, err
	}
	e.Chunks = make([]chunk.Chunk, 0, chunkCount)
	for i := 0; i < chunkCount; i++ {
		kind, err := fr.str()
		if err != nil {
			return nil, err
		}
		name, err := fr.str()
		if err != nil {
			return nil, err
		}
		startLine, err := fr.int()
		if err != nil {
			return nil, err
		}
		endLine, err := fr.int()
		if err != nil {
			return nil, err
		}
		offset, err := fr.int()
		if err != nil {
			return nil, err
		}
		length, err := fr.int()
		if err != nil {
			return nil, err
		}
		if offset+length > len(chunkBlob) {
			return nil, cmerrors.IndexCorruptError("chunk reference out of range", nil)
		}
		e.Chunks = append(e.Chunks, chunk.Chunk{
			Kind:      chunk.Kind(kind),
			Name:      name,
			StartLine: startLine,
			EndLine:   endLine,
			Text:      string(chunkBlob[offset : offset+length]),
		})
	}

	termCount, err := fr.int()
	if err != nil {
		return nil, err
	}
	for i := 0; i < termCount; i++ {
		term, err := fr.str()
		if err != nil {
			return nil, err
		}
		fn, err := fr.uint()
		if err != nil {
			return nil, err
		}
		sym, err := fr.uint()
		if err != nil {
			return nil, err
		}
		body, err := fr.uint()
		if err != nil {
			return nil, err
		}
		e.Terms[term] = FieldFreq{Filename: uint32(fn), Symbols: uint32(sym), Body: uint32(body)}
	}

	impCount, err := fr.int()
	if err != nil {
		return nil, err
	}
	e.Imports = make([]string, 0, impCount)
	for i := 0; i < impCount; i++ {
		imp, err := fr.str()
		if err != nil {
			return nil, err
		}
		e.Imports = append(e.Imports, imp)
	}
	return e, nil
}

func sortedTerms(m map[string]FieldFreq) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedEdgeKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
