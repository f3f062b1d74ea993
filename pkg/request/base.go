// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/luxfi/broadcast/pkg/stream"
)

// TaskID links a request to the task that spawned it. The zero value means
// "no parent".
type TaskID struct {
	NodeID string
	ID     int64
}

// IsSet reports whether the task id refers to a parent task.
func (t TaskID) IsSet() bool {
	return t.NodeID != ""
}

func (t TaskID) String() string {
	if !t.IsSet() {
		return "unset"
	}
	return fmt.Sprintf("%s:%d", t.NodeID, t.ID)
}

// Base carries the fields every request shares: a unique id and an optional
// parent task.
type Base struct {
	id         uuid.UUID
	parentTask TaskID
}

// NewBase assigns a fresh random id.
func NewBase() Base {
	return Base{id: uuid.New()}
}

func (b *Base) ID() uuid.UUID {
	return b.id
}

func (b *Base) ParentTask() TaskID {
	return b.parentTask
}

// SetParentTask records the task that spawned this request. An empty nodeID
// clears it.
func (b *Base) SetParentTask(nodeID string, id int64) {
	if nodeID == "" {
		b.parentTask = TaskID{}
		return
	}
	b.parentTask = TaskID{NodeID: nodeID, ID: id}
}

// Encode writes the 16 id bytes, then the parent node id, then the parent
// task id only when a parent is set.
func (b *Base) Encode(w *stream.Writer) error {
	if err := w.WriteRaw(b.id[:]); err != nil {
		return err
	}
	if err := w.WriteString(b.parentTask.NodeID); err != nil {
		return err
	}
	if b.parentTask.IsSet() {
		return w.WriteZLong(b.parentTask.ID)
	}
	return nil
}

func (b *Base) Decode(r *stream.Reader) error {
	raw, err := r.ReadRaw(len(b.id))
	if err != nil {
		return err
	}
	copy(b.id[:], raw)

	nodeID, err := r.ReadString()
	if err != nil {
		return err
	}
	b.parentTask = TaskID{NodeID: nodeID}
	if nodeID != "" {
		if b.parentTask.ID, err = r.ReadZLong(); err != nil {
			return err
		}
	}
	return nil
}
