// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// planeNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	planeNamespace = "streamplane"

	protocolSubsystem = "protocol"

	// 以下为当前使用的通用标签名。
	apiKeyLabelName   = "api_key"
	kindLabelName     = "kind"
	directionLabel    = "direction"
	resultLabelName   = "result"
	codecLabelName    = "codec"
	SuccessLabel      = "success"
	FailLabel         = "fail"
	UnknownKindLabel  = "unknown_kind"
	EncodeDirection   = "encode"
	DecodeDirection   = "decode"
	CompressDirection = "compress"
)

var (
	// sizeBuckets 为消息大小的桶划分，单位为字节。
	sizeBuckets = prometheus.ExponentialBuckets(16, 4, 10)

	// CodecBytes 统计编码/解码的字节数分布。
	CodecBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: planeNamespace,
			Subsystem: protocolSubsystem,
			Name:      "codec_bytes",
			Help:      "size of encoded or decoded admin messages",
			Buckets:   sizeBuckets,
		}, []string{apiKeyLabelName, directionLabel})

	// DecodeFailures 统计解码失败次数。
	DecodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: planeNamespace,
			Subsystem: protocolSubsystem,
			Name:      "decode_failures_total",
			Help:      "number of admin messages that failed to decode",
		}, []string{apiKeyLabelName})

	// DispatchTotal 统计对象请求按资源类型分派的结果。
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: planeNamespace,
			Subsystem: protocolSubsystem,
			Name:      "dispatch_total",
			Help:      "number of object requests dispatched by resource kind",
		}, []string{apiKeyLabelName, kindLabelName, resultLabelName})

	// FrameCompressedBytes 统计帧压缩前后的字节数。
	FrameCompressedBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: planeNamespace,
			Subsystem: protocolSubsystem,
			Name:      "frame_compressed_bytes_total",
			Help:      "bytes written by the frame compressor",
		}, []string{codecLabelName})

	metricRegisterer prometheus.Registerer
	registerOnce     sync.Once
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标，重复调用只生效一次。
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(CodecBytes)
		r.MustRegister(DecodeFailures)
		r.MustRegister(DispatchTotal)
		r.MustRegister(FrameCompressedBytes)
		metricRegisterer = r
	})
}
