package partition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// ReplicaKey 为分区的索引键，由所属 Topic 名称与分区序号组成，文本形式为 "<topic>-<partition>"。
type ReplicaKey struct {
	Topic     string
	Partition uint32
}

func NewReplicaKey(topic string, partition uint32) ReplicaKey {
	return ReplicaKey{Topic: topic, Partition: partition}
}

// ParseReplicaKey 解析 "<topic>-<partition>"，以最后一个 '-' 分隔，topic 本身可以包含 '-'。
func ParseReplicaKey(s string) (ReplicaKey, error) {
	idx := strings.LastIndexByte(s, '-')
	if idx <= 0 || idx == len(s)-1 {
		return ReplicaKey{}, merr.WrapErrParameterInvalidMsg("replica key %q is not <topic>-<partition>", s)
	}
	p, err := strconv.ParseUint(s[idx+1:], 10, 32)
	if err != nil {
		return ReplicaKey{}, merr.WrapErrParameterInvalidMsg("replica key %q has invalid partition: %s", s, err.Error())
	}
	return ReplicaKey{Topic: s[:idx], Partition: uint32(p)}, nil
}

func (k ReplicaKey) String() string {
	return fmt.Sprintf("%s-%d", k.Topic, k.Partition)
}

func (k *ReplicaKey) WriteSize(version codec.Version) int {
	return codec.String(&k.Topic).WriteSize(version) + codec.Int(&k.Partition).WriteSize(version)
}

func (k *ReplicaKey) Encode(dst *codec.Buffer, version codec.Version) error {
	if err := codec.String(&k.Topic).Encode(dst, version); err != nil {
		return err
	}
	return codec.Int(&k.Partition).Encode(dst, version)
}

func (k *ReplicaKey) Decode(src *codec.Cursor, version codec.Version) error {
	if err := codec.String(&k.Topic).Decode(src, version); err != nil {
		return err
	}
	return codec.Int(&k.Partition).Decode(src, version)
}
