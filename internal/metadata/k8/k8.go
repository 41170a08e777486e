// Package k8 定义元数据对象与 Kubernetes 资源之间的转换边界。
//
// 这里只描述转换的形状，不访问 Kubernetes API。
package k8

import (
	"maps"
	"strconv"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Group 为资源所在的 API 组。
const (
	Group      = "streamplane.io"
	APIVersion = Group + "/v1"
)

// K8Obj 为 Kubernetes 中的资源对象。
type K8Obj[S any] struct {
	metav1.TypeMeta
	metav1.ObjectMeta
	Spec   S
	Status core.Status
}

// ExtendedSpec 为可以自定义转换逻辑的资源类型实现。
type ExtendedSpec[S any] interface {
	ConvertFromK8(obj K8Obj[S], multiNamespace bool) (*store.MetadataStoreObject[S], error)
}

// ConvertFromK8 将 Kubernetes 对象转换为存储对象。
// S 实现了 ExtendedSpec 时使用其自定义逻辑，否则使用 DefaultConvertFromK8。
func ConvertFromK8[S any, P core.SpecPtr[S]](obj K8Obj[S], multiNamespace bool) (*store.MetadataStoreObject[S], error) {
	if ext, ok := any(P(&obj.Spec)).(ExtendedSpec[S]); ok {
		return ext.ConvertFromK8(obj, multiNamespace)
	}
	return DefaultConvertFromK8[S, P](obj, multiNamespace)
}

// DefaultConvertFromK8 为默认转换：名称作为 key（多命名空间时为 "<namespace>/<name>"），
// ResourceVersion 作为 Revision，父类型的 OwnerReference 作为父对象 key。
func DefaultConvertFromK8[S any, P core.SpecPtr[S]](obj K8Obj[S], multiNamespace bool) (*store.MetadataStoreObject[S], error) {
	label := P(&obj.Spec).Label()
	if obj.Name == "" {
		return nil, merr.WrapErrConversion(label, "", "missing object name")
	}
	if obj.Kind != "" && obj.Kind != label {
		return nil, merr.WrapErrConversion(label, obj.Name, "unexpected kind "+obj.Kind)
	}

	var revision uint64
	if obj.ResourceVersion != "" {
		v, err := strconv.ParseUint(obj.ResourceVersion, 10, 64)
		if err != nil {
			return nil, merr.WrapErrConversion(label, obj.Name, "invalid resource version "+obj.ResourceVersion)
		}
		revision = v
	}

	key := obj.Name
	if multiNamespace && obj.Namespace != "" {
		key = obj.Namespace + "/" + obj.Name
	}

	out := &store.MetadataStoreObject[S]{
		Key:    key,
		Spec:   obj.Spec,
		Status: ConvertStatusFromK8[S, P](obj),
		Ctx: store.MetadataContext{
			Revision: revision,
			Labels:   maps.Clone(obj.Labels),
		},
	}
	if ownerLabel := P(&obj.Spec).OwnerLabel(); ownerLabel != "" {
		for _, ref := range obj.OwnerReferences {
			if ref.Kind == ownerLabel {
				out.Ctx.OwnerKey = ref.Name
				break
			}
		}
	}
	return out, nil
}

// ConvertStatusFromK8 返回对象的 Status，未设置时返回类型的默认 Status。
func ConvertStatusFromK8[S any, P core.SpecPtr[S]](obj K8Obj[S]) core.Status {
	if obj.Status != nil {
		return obj.Status
	}
	return P(&obj.Spec).NewStatus()
}

// IntoK8 将存储对象转换为 namespace 下的 Kubernetes 对象。
func IntoK8[S any, P core.SpecPtr[S]](obj *store.MetadataStoreObject[S], namespace string) K8Obj[S] {
	spec := obj.Spec
	out := K8Obj[S]{
		TypeMeta: metav1.TypeMeta{
			Kind:       P(&spec).Label(),
			APIVersion: APIVersion,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      obj.Key,
			Namespace: namespace,
			Labels:    maps.Clone(obj.Ctx.Labels),
		},
		Spec:   spec,
		Status: obj.Status,
	}
	if obj.Ctx.Revision > 0 {
		out.ResourceVersion = strconv.FormatUint(obj.Ctx.Revision, 10)
	}
	if obj.IsOwned() {
		out.OwnerReferences = []metav1.OwnerReference{{
			APIVersion: APIVersion,
			Kind:       P(&spec).OwnerLabel(),
			Name:       obj.Ctx.OwnerKey,
		}}
	}
	return out
}
