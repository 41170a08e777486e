package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// Metadata 为 List、Watch 响应中的单个对象。
type Metadata[S any, P core.SpecPtr[S]] struct {
	Name   string      `json:"name"`
	Spec   S           `json:"spec"`
	Status core.Status `json:"status"`
}

// MetadataFromStore 将存储对象转换为响应中的对象。
func MetadataFromStore[S any, P core.SpecPtr[S]](obj *store.MetadataStoreObject[S]) Metadata[S, P] {
	return Metadata[S, P]{Name: obj.Key, Spec: obj.Spec, Status: obj.Status}
}

func (m *Metadata[S, P]) status() core.Status {
	if m.Status == nil {
		m.Status = P(&m.Spec).NewStatus()
	}
	return m.Status
}

func (m *Metadata[S, P]) fields() []codec.Field {
	return []codec.Field{
		{Name: "name", Value: codec.String(&m.Name)},
		{Name: "spec", Value: P(&m.Spec)},
		{Name: "status", Value: m.status()},
	}
}

func (m *Metadata[S, P]) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, m.fields()...)
}

func (m *Metadata[S, P]) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, m.fields()...)
}

func (m *Metadata[S, P]) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, m.fields()...)
}

func metadataValue[S any, P core.SpecPtr[S]](m *Metadata[S, P]) codec.Value {
	return m
}

// MetadataUpdate 为自某个 epoch 以来的变化。
type MetadataUpdate[S any, P core.SpecPtr[S]] struct {
	Epoch   int64            `json:"epoch"`
	Changes []Metadata[S, P] `json:"changes"`
	Deletes []string         `json:"deletes"`
	// All 非空时为全量同步，接收方应替换本地缓存。
	All []Metadata[S, P] `json:"all"`
}

// UpdateFromStore 将存储的增量转换为 MetadataUpdate。
func UpdateFromStore[S any, P core.SpecPtr[S]](changes store.Changes[S]) MetadataUpdate[S, P] {
	out := MetadataUpdate[S, P]{Epoch: changes.Epoch, Deletes: changes.Deletes}
	items := make([]Metadata[S, P], 0, len(changes.Updates))
	for _, obj := range changes.Updates {
		items = append(items, MetadataFromStore[S, P](obj))
	}
	if len(items) == 0 {
		items = nil
	}
	if changes.All {
		out.All = items
	} else {
		out.Changes = items
	}
	return out
}

// IsSyncAll 判断是否为全量同步。
func (u *MetadataUpdate[S, P]) IsSyncAll() bool {
	return len(u.All) > 0
}

func (u *MetadataUpdate[S, P]) fields() []codec.Field {
	return []codec.Field{
		{Name: "epoch", Value: codec.Int(&u.Epoch)},
		{Name: "changes", Value: codec.Slice(&u.Changes, metadataValue[S, P])},
		{Name: "deletes", Value: codec.Strings(&u.Deletes)},
		{Name: "all", Value: codec.Slice(&u.All, metadataValue[S, P])},
	}
}

func (u *MetadataUpdate[S, P]) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, u.fields()...)
}

func (u *MetadataUpdate[S, P]) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, u.fields()...)
}

func (u *MetadataUpdate[S, P]) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, u.fields()...)
}
