package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/jose0796/scope.go/pkg/framework"
)

// Sample is one decoded frame with the displayed values.
type Sample struct {
	Session string `protobuf:"bytes,1,opt,name=session,proto3" json:"session,omitempty"`
	Seq     uint64 `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	// TimeUs is the receive time in microseconds since the epoch.
	TimeUs   int64  `protobuf:"varint,3,opt,name=time_us,json=timeUs,proto3" json:"time_us,omitempty"`
	Analog1  uint32 `protobuf:"varint,4,opt,name=analog1,proto3" json:"analog1,omitempty"`
	Analog2  uint32 `protobuf:"varint,5,opt,name=analog2,proto3" json:"analog2,omitempty"`
	Digital1 uint32 `protobuf:"varint,6,opt,name=digital1,proto3" json:"digital1,omitempty"`
	Digital2 uint32 `protobuf:"varint,7,opt,name=digital2,proto3" json:"digital2,omitempty"`
	// Values are scaled A1, A2, D1, D2; NaN for disabled channels.
	Values  []float64 `protobuf:"fixed64,8,rep,packed,name=values,proto3" json:"values,omitempty"`
	Enabled []bool    `protobuf:"varint,9,rep,packed,name=enabled,proto3" json:"enabled,omitempty"`
	// Aligned is false for the zero sample emitted while resynchronizing.
	Aligned bool `protobuf:"varint,10,opt,name=aligned,proto3" json:"aligned,omitempty"`
}

// NewMessage implements Message.
func (m *Sample) NewMessage() fx.Message { return &Sample{} }

// TypeID implements SerializableMessage.
func (m *Sample) TypeID() uint32 { return SampleTypeID }

// Serializable implements SerializableMessage.
func (m *Sample) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Sample) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Sample) Reset() { *m = Sample{} }

// String implements proto.Message.
func (m *Sample) String() string { return proto.CompactTextString(m) }

// SampleBatch groups consecutive samples for low-rate links.
type SampleBatch struct {
	Samples []*Sample `protobuf:"bytes,1,rep,name=samples,proto3" json:"samples,omitempty"`
}

// NewMessage implements Message.
func (m *SampleBatch) NewMessage() fx.Message { return &SampleBatch{} }

// TypeID implements SerializableMessage.
func (m *SampleBatch) TypeID() uint32 { return SampleBatchTypeID }

// Serializable implements SerializableMessage.
func (m *SampleBatch) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SampleBatch) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SampleBatch) Reset() { *m = SampleBatch{} }

// String implements proto.Message.
func (m *SampleBatch) String() string { return proto.CompactTextString(m) }

// SyncStatus is an event reporting the framing state and counters.
type SyncStatus struct {
	Session      string `protobuf:"bytes,1,opt,name=session,proto3" json:"session,omitempty"`
	Ready        bool   `protobuf:"varint,2,opt,name=ready,proto3" json:"ready,omitempty"`
	Frames       uint64 `protobuf:"varint,3,opt,name=frames,proto3" json:"frames,omitempty"`
	Resyncs      uint64 `protobuf:"varint,4,opt,name=resyncs,proto3" json:"resyncs,omitempty"`
	Skipped      uint64 `protobuf:"varint,5,opt,name=skipped,proto3" json:"skipped,omitempty"`
	Underruns    uint64 `protobuf:"varint,6,opt,name=underruns,proto3" json:"underruns,omitempty"`
	SyncTimeouts uint64 `protobuf:"varint,7,opt,name=sync_timeouts,json=syncTimeouts,proto3" json:"sync_timeouts,omitempty"`
}

// NewMessage implements Message.
func (m *SyncStatus) NewMessage() fx.Message { return &SyncStatus{} }

// TypeID implements SerializableMessage.
func (m *SyncStatus) TypeID() uint32 { return SyncStatusTypeID }

// Serializable implements SerializableMessage.
func (m *SyncStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SyncStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SyncStatus) Reset() { *m = SyncStatus{} }

// String implements proto.Message.
func (m *SyncStatus) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupScope  uint32 = 0x00010000
	GroupCustom uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	SampleTypeID      uint32 = GroupScope | TypeIDKindData | 0x0000
	SampleBatchTypeID uint32 = GroupScope | TypeIDKindData | 0x0001
	SyncStatusTypeID  uint32 = GroupScope | TypeIDKindEvent | 0x0000
)
