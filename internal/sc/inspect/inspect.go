// Package inspect 离线解析管理请求帧，输出便于阅读的记录。
package inspect

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/streamplane-go/internal/config"
	"github.com/lk2023060901/streamplane-go/internal/json"
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/framer"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

const (
	LayoutTypeBuffer = "typebuffer"
	LayoutClassic    = "classic"
)

// Record 为一帧的解析结果，Error 非空时其余字段可能不完整。
type Record struct {
	Index         int           `json:"index"`
	ApiKey        uint16        `json:"api_key"`
	Api           string        `json:"api"`
	Version       codec.Version `json:"version"`
	CorrelationID int32         `json:"correlation_id"`
	ClientID      string        `json:"client_id"`
	Layout        string        `json:"layout,omitempty"`
	Kind          string        `json:"kind,omitempty"`
	Shape         string        `json:"shape,omitempty"`
	Payload       any           `json:"payload,omitempty"`
	Error         string        `json:"error,omitempty"`
	ErrorCode     int32         `json:"error_code,omitempty"`
}

type objectRequest interface {
	api.Request
	Buffer() *objects.TypeBuffer
}

type objectRoute struct {
	shape      objects.Shape
	newRequest func() objectRequest
}

var objectRoutes = map[objects.AdminPublicApiKey]objectRoute{
	objects.Create: {objects.ShapeCreate, func() objectRequest { return &objects.ObjectApiCreateRequest{} }},
	objects.Delete: {objects.ShapeDelete, func() objectRequest { return &objects.ObjectApiDeleteRequest{} }},
	objects.List:   {objects.ShapeList, func() objectRequest { return &objects.ObjectApiListRequest{} }},
	objects.Watch:  {objects.ShapeWatch, func() objectRequest { return &objects.ObjectApiWatchRequest{} }},
}

// Inspector 按注册表解析帧内容。
type Inspector struct {
	log.Binder

	registry *objects.Registry
	protocol config.ProtocolConfig
}

func New(registry *objects.Registry, protocol config.ProtocolConfig) *Inspector {
	in := &Inspector{registry: registry, protocol: protocol}
	in.BindComponent("inspect").WithRateGroup("sc.inspect", 10, 100)
	return in
}

// Inspect 解析第 index 帧，失败原因记录在 Record.Error 中。
func (in *Inspector) Inspect(index int, frame []byte) Record {
	rec := Record{Index: index}
	if err := in.inspect(&rec, frame); err != nil {
		rec.Error = err.Error()
		rec.ErrorCode = merr.Code(err)
		in.Logger().RatedDebug(1, "inspect frame failed", zap.Int("index", index), zap.Error(err))
	}
	return rec
}

func (in *Inspector) inspect(rec *Record, frame []byte) error {
	src := codec.NewCursor(frame)
	var header api.RequestHeader
	if err := header.Decode(src, 0); err != nil {
		return merr.WrapErrDecodeCause("header", err)
	}
	rec.ApiKey = header.ApiKey
	rec.Api = objects.AdminPublicApiKey(header.ApiKey).String()
	rec.Version = header.ApiVersion
	rec.CorrelationID = header.CorrelationID
	rec.ClientID = header.ClientID

	if header.ApiKey == api.ApiVersionsKey {
		req := &api.ApiVersionsRequest{}
		if err := api.DecodeRequestBody(src, header, req); err != nil {
			return err
		}
		rec.Payload = req
		return checkTrailing(src)
	}

	route, ok := objectRoutes[objects.AdminPublicApiKey(header.ApiKey)]
	if !ok {
		return merr.WrapErrRouteNotFound(header.ApiKey)
	}
	if !in.protocol.AcceptsVersion(header.ApiVersion) {
		return merr.WrapErrVersionUnsupported(header.ApiKey, int16(header.ApiVersion),
			int16(objects.DynamicObjectVersion), int16(objects.CommonVersion))
	}

	rec.Layout = LayoutTypeBuffer
	if header.ApiVersion < objects.DynamicObjectVersion {
		rec.Layout = LayoutClassic
	}

	req := route.newRequest()
	if err := api.DecodeRequestBody(src, header, req); err != nil {
		return err
	}
	if err := checkTrailing(src); err != nil {
		return err
	}

	rec.Kind = req.Buffer().Tag()
	rec.Shape = route.shape.String()
	payload, err := in.registry.Resolve(objects.AdminPublicApiKey(header.ApiKey), route.shape, req.Buffer())
	if err != nil {
		return err
	}
	rec.Payload = payload
	return nil
}

func checkTrailing(src *codec.Cursor) error {
	if n := src.Remaining(); n > 0 {
		return merr.WrapErrDecode("frame", fmt.Sprintf("%d trailing bytes", n))
	}
	return nil
}

// InspectAll 以最多 workers 个并发解析全部帧，结果与输入顺序一致。
func (in *Inspector) InspectAll(ctx context.Context, frames [][]byte, workers int) ([]Record, error) {
	records := make([]Record, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, frame := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i] = in.Inspect(i, frame)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadFrames 读取 r 中的全部帧，直到流在帧边界处结束。
func ReadFrames(r io.Reader, f framer.Framer) ([][]byte, error) {
	var frames [][]byte
	for {
		frame, err := f.ReadFrame(r)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, errors.Wrapf(err, "read frame %d", len(frames))
		}
		frames = append(frames, frame)
	}
}

// WriteRecords 以每行一条 JSON 的形式写出记录。
func WriteRecords(w io.Writer, records []Record) error {
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrapf(err, "marshal record %d", rec.Index)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// SampleRequests 返回一组覆盖各资源类型与请求形态的示例请求，均按 version 封装。
func SampleRequests(version codec.Version) ([]api.Request, error) {
	payloads := []struct {
		wrap    func(objects.Payload, codec.Version) (api.Request, error)
		payload objects.Payload
	}{
		{wrapCreate, objects.NewCreateRequest[topic.TopicSpec]("sample-topic", *topic.NewTopicSpec(2, 1))},
		{wrapCreate, objects.NewCreateRequest[spu.CustomSpuSpec]("sample-spu", spu.CustomSpuSpec{ID: 5001})},
		{wrapDelete, objects.NewDeleteRequest[topic.TopicSpec](core.NewName("sample-topic"))},
		{wrapDelete, objects.NewDeleteRequestWith[spu.CustomSpuSpec](spu.CustomSpuKeyID(5001), true)},
		{wrapList, objects.NewListRequest[partition.PartitionSpec](false, "sample-topic-0")},
		{wrapWatch, objects.NewWatchRequest[spu.SpuSpec](0, false)},
	}

	reqs := make([]api.Request, 0, len(payloads))
	for _, p := range payloads {
		req, err := p.wrap(p.payload, version)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func wrapCreate(p objects.Payload, v codec.Version) (api.Request, error) {
	return objects.NewObjectApiCreateRequest(p, v)
}

func wrapDelete(p objects.Payload, v codec.Version) (api.Request, error) {
	return objects.NewObjectApiDeleteRequest(p, v)
}

func wrapList(p objects.Payload, v codec.Version) (api.Request, error) {
	return objects.NewObjectApiListRequest(p, v)
}

func wrapWatch(p objects.Payload, v codec.Version) (api.Request, error) {
	return objects.NewObjectApiWatchRequest(p, v)
}

// WriteSamples 将示例请求按 version 编码为帧写入 w，关联 ID 从 1 开始递增。
func WriteSamples(w io.Writer, f framer.Framer, version codec.Version, clientID string) error {
	reqs, err := SampleRequests(version)
	if err != nil {
		return err
	}
	for i, req := range reqs {
		data, err := codec.Marshal(api.NewRequestMessage(req, int32(i+1), clientID).WithVersion(version), 0)
		if err != nil {
			return err
		}
		if err := f.WriteFrame(w, data); err != nil {
			return err
		}
	}
	return nil
}
