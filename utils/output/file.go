package output

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/task"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// FileSink 将整次模拟的统计记录写入文件
// 说明：路径以.pb结尾时写protobuf二进制，否则写protojson文本
type FileSink struct {
	path    string
	job     string
	records []task.Record
}

func NewFileSink(path, job string) *FileSink {
	return &FileSink{path: path, job: job}
}

func (s *FileSink) Observe(r task.Record) {
	s.records = append(s.records, r)
}

// Flush 写出文件，每次调用都会覆盖为截至目前的全部记录
func (s *FileSink) Flush(context.Context) error {
	pb, err := toStruct(s.job, s.records)
	if err != nil {
		return err
	}
	var data []byte
	if strings.HasSuffix(s.path, ".pb") {
		data, err = proto.Marshal(pb)
	} else {
		data, err = protojson.MarshalOptions{Multiline: true}.Marshal(pb)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	log.Infof("wrote %d records to %s", len(s.records), s.path)
	return nil
}

func (s *FileSink) Close(context.Context) error {
	return nil
}

// toStruct 转换为 {job, series: [...], records: [...]}
func toStruct(job string, records []task.Record) (*structpb.Struct, error) {
	rows := lo.Map(records, func(r task.Record, _ int) any {
		m := fields(job, r)
		delete(m, "job")
		return m
	})
	return structpb.NewStruct(map[string]any{
		"job":     job,
		"series":  lo.ToAnySlice(task.SeriesNames),
		"records": rows,
	})
}

// LoadFile 读取FileSink写出的文件
func LoadFile(path string) (*structpb.Struct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	pb := &structpb.Struct{}
	if strings.HasSuffix(path, ".pb") {
		err = proto.Unmarshal(data, pb)
	} else {
		err = protojson.Unmarshal(data, pb)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	return pb, nil
}
