package output

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/task"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoURI = "mongodb://localhost:27017"
	mongoTimeout    = 10 * time.Second
)

// inserter 对*mongo.Collection的抽象
type inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoSink 将每步的统计记录写入MongoDB集合，一步一个文档
type MongoSink struct {
	client *mongo.Client
	coll   inserter
	job    string
	docs   []any // 尚未写入的文档
}

// NewMongoSink 连接MongoDB
// 功能：建立连接并Ping确认可用
// 参数：c-上下文，cfg-输出配置（uri为空时连接本机），job-任务名，写入每个文档
func NewMongoSink(c context.Context, cfg config.MongoOutput, job string) (*MongoSink, error) {
	uri := cfg.URI
	if uri == "" {
		uri = defaultMongoURI
	}
	client, err := mongo.Connect(c, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(c, mongoTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(c)
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	log.Infof("output records to mongo %s.%s", cfg.GetDb(), cfg.GetColl())
	return &MongoSink{
		client: client,
		coll:   client.Database(cfg.GetDb()).Collection(cfg.GetColl()),
		job:    job,
	}, nil
}

func (s *MongoSink) Observe(r task.Record) {
	s.docs = append(s.docs, document(s.job, r))
}

// Flush 批量写入缓存的文档，失败时保留缓存以便重试
func (s *MongoSink) Flush(c context.Context) error {
	if len(s.docs) == 0 {
		return nil
	}
	res, err := s.coll.InsertMany(c, s.docs)
	if err != nil {
		return fmt.Errorf("mongo InsertMany error: %w", err)
	}
	log.Infof("inserted %d records", len(res.InsertedIDs))
	s.docs = s.docs[:0]
	return nil
}

func (s *MongoSink) Close(c context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(c)
}

func document(job string, r task.Record) bson.M {
	doc := bson.M(fields(job, r))
	doc["series"] = bson.M(lo.MapValues(series(r), func(v int64, _ string) any { return v }))
	return doc
}
