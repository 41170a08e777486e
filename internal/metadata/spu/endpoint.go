package spu

import (
	"fmt"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

// EncryptionEnum 描述端点使用的传输加密方式。
type EncryptionEnum uint8

const (
	EncryptionPlaintext EncryptionEnum = iota
	EncryptionSSL
)

var encryptionEnum = union.NewEnum("EncryptionEnum", EncryptionPlaintext, EncryptionSSL)

func (e EncryptionEnum) String() string {
	if e == EncryptionSSL {
		return "SSL"
	}
	return "PLAINTEXT"
}

// Endpoint 为 SPU 内部通信使用的端点。
type Endpoint struct {
	Port       uint16
	Host       string
	Encryption EncryptionEnum
}

func NewEndpoint(host string, port uint16) Endpoint {
	return Endpoint{Host: host, Port: port}
}

func (e *Endpoint) fields() []codec.Field {
	return []codec.Field{
		{Name: "port", Value: codec.Int(&e.Port)},
		{Name: "host", Value: codec.String(&e.Host)},
		{Name: "encryption", Value: encryptionEnum.Value(&e.Encryption)},
	}
}

func (e *Endpoint) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, e.fields()...)
}

func (e *Endpoint) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, e.fields()...)
}

func (e *Endpoint) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, e.fields()...)
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// IngressAddr 为对外暴露的地址，主机名和 IP 至少有一个。
type IngressAddr struct {
	Hostname *string
	IP       *string
}

func (a *IngressAddr) fields() []codec.Field {
	return []codec.Field{
		{Name: "hostname", Value: codec.Optional(&a.Hostname, codec.String)},
		{Name: "ip", Value: codec.Optional(&a.IP, codec.String)},
	}
}

func (a *IngressAddr) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, a.fields()...)
}

func (a *IngressAddr) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, a.fields()...)
}

func (a *IngressAddr) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, a.fields()...)
}

// Host 返回用于连接的主机，优先使用主机名。
func (a IngressAddr) Host() string {
	if a.Hostname != nil {
		return *a.Hostname
	}
	if a.IP != nil {
		return *a.IP
	}
	return ""
}

// IngressPort 为 SPU 对外暴露的端口。
type IngressPort struct {
	Port       uint16
	Ingress    []IngressAddr
	Encryption EncryptionEnum
}

func (p *IngressPort) fields() []codec.Field {
	return []codec.Field{
		{Name: "port", Value: codec.Int(&p.Port)},
		{Name: "ingress", Value: codec.Slice(&p.Ingress, func(a *IngressAddr) codec.Value { return a })},
		{Name: "encryption", Value: encryptionEnum.Value(&p.Encryption)},
	}
}

func (p *IngressPort) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, p.fields()...)
}

func (p *IngressPort) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, p.fields()...)
}

func (p *IngressPort) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, p.fields()...)
}

// Host 返回第一个对外地址的主机。
func (p IngressPort) Host() string {
	if len(p.Ingress) == 0 {
		return ""
	}
	return p.Ingress[0].Host()
}
