// Package store 保存控制面本地的元数据对象。
//
// 对象之间的归属关系只记录父对象的 key，查找父对象需要到父类型的 LocalStore 中按 key 查询。
package store

import (
	"maps"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
)

// MetadataContext 为对象在存储中的附加信息。
type MetadataContext struct {
	// Revision 每次写入递增。
	Revision uint64
	// OwnerKey 为父对象的 key，没有父对象时为空。
	OwnerKey string
	Labels   map[string]string
}

// MetadataStoreObject 为存储中的一个对象。
type MetadataStoreObject[S any] struct {
	Key    string
	Spec   S
	Status core.Status
	Ctx    MetadataContext
}

// NewObject 使用 S 的默认 Status 构造对象。
func NewObject[S any, P core.SpecPtr[S]](key string, spec S) *MetadataStoreObject[S] {
	return &MetadataStoreObject[S]{
		Key:    key,
		Spec:   spec,
		Status: P(&spec).NewStatus(),
	}
}

// WithOwner 设置父对象的 key。
func (o *MetadataStoreObject[S]) WithOwner(ownerKey string) *MetadataStoreObject[S] {
	o.Ctx.OwnerKey = ownerKey
	return o
}

// WithLabels 设置对象的标签。
func (o *MetadataStoreObject[S]) WithLabels(labels map[string]string) *MetadataStoreObject[S] {
	o.Ctx.Labels = maps.Clone(labels)
	return o
}

// IsOwned 判断对象是否有父对象。
func (o *MetadataStoreObject[S]) IsOwned() bool {
	return o.Ctx.OwnerKey != ""
}

func (o *MetadataStoreObject[S]) clone() *MetadataStoreObject[S] {
	out := *o
	out.Ctx.Labels = maps.Clone(o.Ctx.Labels)
	return &out
}
