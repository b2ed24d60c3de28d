package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// MongoBackend stores each collection as a MongoDB collection. Keys are
// ObjectID hex strings kept in _id.
type MongoBackend struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

type MongoOptions struct {
	URI      string
	Database string
	// Transactions requires a replica set.
	Transactions bool
}

func ConnectMongo(ctx context.Context, o MongoOptions) (*MongoBackend, error) {
	opts := options.Client().
		ApplyURI(o.URI).
		SetRegistry(newMongoRegistry()).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoBackend{
		client:       client,
		db:           client.Database(o.Database),
		transactions: o.Transactions,
	}, nil
}

func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

func (b *MongoBackend) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.transactions {
		return fn(ctx)
	}
	sess, err := b.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

func (b *MongoBackend) Next(ctx context.Context, name string, floor int64) (int64, error) {
	col := b.db.Collection(countersCollection)
	id := bson.M{"_id": name}

	if floor > 0 {
		_, err := col.UpdateOne(ctx, id,
			bson.M{"$max": bson.M{"seq": floor}},
			options.Update().SetUpsert(true))
		if err != nil {
			return 0, fmt.Errorf("seed counter %s: %w", name, err)
		}
	}

	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := col.FindOneAndUpdate(ctx, id,
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next counter %s: %w", name, err)
	}
	return out.Seq, nil
}

func (b *MongoBackend) EnsureSchema(ctx context.Context, specs ...CollectionSpec) error {
	for _, s := range specs {
		if len(s.Indexes) == 0 {
			continue
		}
		models := make([]mongo.IndexModel, 0, len(s.Indexes))
		for _, ix := range s.Indexes {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: ix.Field, Value: 1}},
				Options: options.Index().SetUnique(ix.Unique),
			})
		}
		if _, err := b.db.Collection(s.Name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", s.Name, err)
		}
	}
	return nil
}

type mongoCollection[D Document] struct {
	col *mongo.Collection
}

func newMongoCollection[D Document](b *MongoBackend, name string) *mongoCollection[D] {
	return &mongoCollection[D]{col: b.db.Collection(name)}
}

func (c *mongoCollection[D]) Name() string { return c.col.Name() }

func toBSON(f Filter) bson.M {
	m := bson.M{}
	for k, v := range f {
		if k == KeyField {
			m["_id"] = fmt.Sprint(v)
			continue
		}
		m[k] = v
	}
	return m
}

func (c *mongoCollection[D]) Find(ctx context.Context, f Filter) ([]D, error) {
	cur, err := c.col.Find(ctx, toBSON(f))
	if err != nil {
		return nil, err
	}
	out := []D{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mongoCollection[D]) FindOne(ctx context.Context, f Filter) (D, error) {
	var d D
	err := c.col.FindOne(ctx, toBSON(f)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return d, ErrNotFound
	}
	return d, err
}

func (c *mongoCollection[D]) Count(ctx context.Context, f Filter) (int64, error) {
	return c.col.CountDocuments(ctx, toBSON(f))
}

func (c *mongoCollection[D]) MaxInt(ctx context.Context, field string) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: field, Value: -1}}).
		SetProjection(bson.M{field: 1})

	var m bson.M
	err := c.col.FindOne(ctx, bson.M{}, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, _ := toInt64(m[field])
	return n, nil
}

func (c *mongoCollection[D]) InsertOne(ctx context.Context, doc D) error {
	if doc.DocKey() == "" {
		doc.SetDocKey(primitive.NewObjectID().Hex())
	}
	_, err := c.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (c *mongoCollection[D]) ReplaceOne(ctx context.Context, f Filter, doc D) (int64, error) {
	res, err := c.col.ReplaceOne(ctx, toBSON(f), doc)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection[D]) UpdateOne(ctx context.Context, f Filter, set Fields) (int64, error) {
	res, err := c.col.UpdateOne(ctx, toBSON(f), bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection[D]) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	res, err := c.col.DeleteOne(ctx, toBSON(f))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection[D]) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	res, err := c.col.DeleteMany(ctx, toBSON(f))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// decimal.Decimal は Decimal128 として保存する
var tDecimal = reflect.TypeOf(decimal.Decimal{})

func newMongoRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tDecimal, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(tDecimal, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tDecimal {
		return bsoncodec.ValueEncoderError{Name: "DecimalEncodeValue", Types: []reflect.Type{tDecimal}, Received: val}
	}
	d := val.Interface().(decimal.Decimal)
	d128, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return err
	}
	return vw.WriteDecimal128(d128)
}

func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tDecimal {
		return bsoncodec.ValueDecoderError{Name: "DecimalDecodeValue", Types: []reflect.Type{tDecimal}, Received: val}
	}

	var (
		d   decimal.Decimal
		err error
	)
	switch vr.Type() {
	case bson.TypeDecimal128:
		var d128 primitive.Decimal128
		if d128, err = vr.ReadDecimal128(); err == nil {
			d, err = decimal.NewFromString(d128.String())
		}
	case bson.TypeDouble:
		var f float64
		if f, err = vr.ReadDouble(); err == nil {
			d = decimal.NewFromFloat(f)
		}
	case bson.TypeInt32:
		var i int32
		if i, err = vr.ReadInt32(); err == nil {
			d = decimal.NewFromInt32(i)
		}
	case bson.TypeInt64:
		var i int64
		if i, err = vr.ReadInt64(); err == nil {
			d = decimal.NewFromInt(i)
		}
	case bson.TypeString:
		var s string
		if s, err = vr.ReadString(); err == nil {
			d, err = decimal.NewFromString(s)
		}
	case bson.TypeNull:
		err = vr.ReadNull()
	default:
		return fmt.Errorf("cannot decode %v into decimal.Decimal", vr.Type())
	}
	if err != nil {
		return err
	}
	val.Set(reflect.ValueOf(d))
	return nil
}
