package compiler

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/auralab/stimseq/pattern"
	"github.com/auralab/stimseq/stimgen"
)

// ErrBadContainer is returned when a byte stream is not a valid sequence
// container: wrong magic, malformed header, or datasets that disagree with
// their declared shapes.
var ErrBadContainer = errors.New("compiler: not a stimulus sequence container")

// containerMagic opens every serialized SequenceFile; the trailing digit
// versions the layout.
var containerMagic = [5]byte{'S', 'T', 'S', 'Q', '1'}

// maxHeaderBytes bounds the JSON header so a corrupt length prefix cannot
// trigger an enormous allocation.
const maxHeaderBytes = 64 << 20

// datasetDesc declares one raw payload: its path-style name, element type,
// and shape. Payloads follow the header in declaration order as packed
// little-endian values.
type datasetDesc struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
	Shape []int  `json:"shape"`
}

// containerHeader is the JSON block between the magic and the payloads.
// The manifest fields double as the container's root attributes.
type containerHeader struct {
	Manifest     Manifest      `json:"manifest"`
	Datasets     []datasetDesc `json:"datasets"`
	TrialTable   []TrialRow    `json:"trial_table,omitempty"`
	ElementTable []pattern.Row `json:"element_table,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Write serializes a SequenceFile: magic, header length, JSON header, then
// the audio, TTL, and event-column datasets as little-endian payloads.
// Audio, TTL, and events survive a Write/Read round trip bit-exactly.
func Write(w io.Writer, seq *SequenceFile) error {
	n := len(seq.Events)
	cols := eventColumns(seq.Events)
	hdr := containerHeader{
		Manifest: seq.Manifest,
		Datasets: []datasetDesc{
			{Name: "/audio", Dtype: "float32", Shape: []int{seq.Audio.Frames(), seq.Audio.Channels}},
			{Name: "/ttl", Dtype: "uint8", Shape: []int{len(seq.TTL)}},
			{Name: "/events/sample_index", Dtype: "int64", Shape: []int{n}},
			{Name: "/events/time_ms", Dtype: "float64", Shape: []int{n}},
			{Name: "/events/trial_index", Dtype: "int64", Shape: []int{n}},
			{Name: "/events/element_index", Dtype: "int64", Shape: []int{n}},
			{Name: "/events/code", Dtype: "uint8", Shape: []int{n}},
		},
		TrialTable:   seq.TrialTable,
		ElementTable: seq.ElementTable,
		Warnings:     seq.Warnings,
	}
	headerBytes, err := gojson.Marshal(hdr)
	if err != nil {
		return wrapf(ErrBadContainer, "encode header: %v", err)
	}

	if _, err := w.Write(containerMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(headerBytes))); err != nil {
		return err
	}
	if _, err := w.Write(headerBytes); err != nil {
		return err
	}
	for _, payload := range []interface{}{
		seq.Audio.Data, seq.TTL,
		cols.sampleIndex, cols.timeMs, cols.trialIndex, cols.elementIndex, cols.code,
	} {
		if err := binary.Write(w, binary.LittleEndian, payload); err != nil {
			return err
		}
	}
	return nil
}

// Read deserializes a container written by Write.
func Read(r io.Reader) (*SequenceFile, error) {
	var magic [5]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, wrapf(ErrBadContainer, "read magic: %v", err)
	}
	if magic != containerMagic {
		return nil, wrapf(ErrBadContainer, "magic %q", magic[:])
	}
	var headerLen uint32
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, wrapf(ErrBadContainer, "read header length: %v", err)
	}
	if headerLen > maxHeaderBytes {
		return nil, wrapf(ErrBadContainer, "header of %d bytes", headerLen)
	}
	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, wrapf(ErrBadContainer, "read header: %v", err)
	}
	var hdr containerHeader
	if err := gojson.Unmarshal(headerBytes, &hdr); err != nil {
		return nil, wrapf(ErrBadContainer, "decode header: %v", err)
	}

	var (
		audio    []float32
		channels int
		ttl      []uint8
		cols     columns
	)
	for _, ds := range hdr.Datasets {
		count, err := elementCount(ds)
		if err != nil {
			return nil, err
		}
		switch {
		case ds.Name == "/audio" && ds.Dtype == "float32" && len(ds.Shape) == 2:
			audio = make([]float32, count)
			channels = ds.Shape[1]
			err = binary.Read(r, binary.LittleEndian, audio)
		case ds.Name == "/ttl" && ds.Dtype == "uint8":
			ttl = make([]uint8, count)
			err = binary.Read(r, binary.LittleEndian, ttl)
		case ds.Name == "/events/sample_index" && ds.Dtype == "int64":
			cols.sampleIndex = make([]int64, count)
			err = binary.Read(r, binary.LittleEndian, cols.sampleIndex)
		case ds.Name == "/events/time_ms" && ds.Dtype == "float64":
			cols.timeMs = make([]float64, count)
			err = binary.Read(r, binary.LittleEndian, cols.timeMs)
		case ds.Name == "/events/trial_index" && ds.Dtype == "int64":
			cols.trialIndex = make([]int64, count)
			err = binary.Read(r, binary.LittleEndian, cols.trialIndex)
		case ds.Name == "/events/element_index" && ds.Dtype == "int64":
			cols.elementIndex = make([]int64, count)
			err = binary.Read(r, binary.LittleEndian, cols.elementIndex)
		case ds.Name == "/events/code" && ds.Dtype == "uint8":
			cols.code = make([]uint8, count)
			err = binary.Read(r, binary.LittleEndian, cols.code)
		default:
			return nil, wrapf(ErrBadContainer, "dataset %s (%s)", ds.Name, ds.Dtype)
		}
		if err != nil {
			return nil, wrapf(ErrBadContainer, "read %s: %v", ds.Name, err)
		}
	}

	events, err := cols.zip()
	if err != nil {
		return nil, err
	}
	return &SequenceFile{
		Audio:        stimgen.Buffer{Data: audio, Channels: channels},
		TTL:          ttl,
		Events:       events,
		TrialTable:   hdr.TrialTable,
		ElementTable: hdr.ElementTable,
		Manifest:     hdr.Manifest,
		Warnings:     hdr.Warnings,
	}, nil
}

// WriteFile persists a SequenceFile to disk.
func WriteFile(path string, seq *SequenceFile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := Write(w, seq); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads a SequenceFile from disk.
func ReadFile(path string) (*SequenceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// columns is the serialization-boundary view of the event list; in memory
// events stay ordered records.
type columns struct {
	sampleIndex  []int64
	timeMs       []float64
	trialIndex   []int64
	elementIndex []int64
	code         []uint8
}

func eventColumns(events []Event) columns {
	c := columns{
		sampleIndex:  make([]int64, len(events)),
		timeMs:       make([]float64, len(events)),
		trialIndex:   make([]int64, len(events)),
		elementIndex: make([]int64, len(events)),
		code:         make([]uint8, len(events)),
	}
	for i, ev := range events {
		c.sampleIndex[i] = ev.SampleIndex
		c.timeMs[i] = ev.TimeMs
		c.trialIndex[i] = ev.TrialIndex
		c.elementIndex[i] = ev.ElementIndex
		c.code[i] = ev.Code
	}
	return c
}

func (c columns) zip() ([]Event, error) {
	n := len(c.sampleIndex)
	if len(c.timeMs) != n || len(c.trialIndex) != n || len(c.elementIndex) != n || len(c.code) != n {
		return nil, wrapf(ErrBadContainer, "event columns disagree on length")
	}
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{
			SampleIndex:  c.sampleIndex[i],
			TimeMs:       c.timeMs[i],
			TrialIndex:   c.trialIndex[i],
			ElementIndex: c.elementIndex[i],
			Code:         c.code[i],
		}
	}
	return events, nil
}

// elementCount multiplies a dataset's shape, rejecting negative dims.
func elementCount(ds datasetDesc) (int, error) {
	count := 1
	for _, dim := range ds.Shape {
		if dim < 0 {
			return 0, wrapf(ErrBadContainer, "dataset %s has negative dim %d", ds.Name, dim)
		}
		count *= dim
	}
	return count, nil
}
