package kv

import (
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeSnapshot writes snapshot to w as a length-prefixed protobuf list of
// [key, value] pairs. Order is preserved.
func EncodeSnapshot(w io.Writer, snapshot Snapshot) error {
	pairs := make([]interface{}, 0, len(snapshot))
	for _, e := range snapshot {
		pairs = append(pairs, []interface{}{e.Key, e.Value})
	}
	list, err := structpb.NewList(pairs)
	if err != nil {
		return err
	}

	buf, err := proto.Marshal(list)
	if err != nil {
		return err
	}
	size := int32(len(buf))
	if err := binary.Write(w, binary.BigEndian, size); err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var size int32
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("invalid snapshot size %d", size)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	list := &structpb.ListValue{}
	if err := proto.Unmarshal(buf, list); err != nil {
		return nil, err
	}

	snapshot := make(Snapshot, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		pair := v.GetListValue().GetValues()
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid snapshot entry %d: expected key and value", i)
		}
		snapshot = append(snapshot, Entry{Key: pair[0].GetStringValue(), Value: pair[1].GetStringValue()})
	}
	return snapshot, nil
}
