package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/tensgo/blobstore"
)

var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// CurrentName is the blob name routed through DynamoDB.
const CurrentName = "CURRENT"

// ErrConcurrentModification is returned when another writer committed the
// same version first.
var ErrConcurrentModification = errors.New("s3: concurrent checkpoint commit")

// DDBClient is the subset of the DynamoDB API used by DDBCommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// Commit is one entry of the checkpoint commit log.
type Commit struct {
	Version     uint64
	Manifest    string
	CommittedAt time.Time
}

// DDBCommitStore stores tensor blobs and manifests in S3 and keeps the
// CURRENT pointer as an append-only commit log in DynamoDB. Every commit
// is a conditional put of the next version, so two concurrent Saves can
// never both win, and the log records which manifest was current when.
//
// The table is keyed by the store URI and the commit version:
//
//	aws dynamodb create-table \
//	  --table-name tensgo-commits \
//	  --attribute-definitions AttributeName=store_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=store_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	*Store
	ddb   DDBClient
	table string
	uri   string
	now   func() time.Time
}

// NewDDBCommitStore wraps store. storeURI separates commit logs sharing a
// table, typically "s3://bucket/prefix".
func NewDDBCommitStore(store *Store, ddb DDBClient, table, storeURI string) *DDBCommitStore {
	return &DDBCommitStore{Store: store, ddb: ddb, table: table, uri: storeURI, now: time.Now}
}

// Open serves CURRENT from the newest commit and everything else from S3.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentName {
		return s.Store.Open(ctx, name)
	}
	head, err := s.Head(ctx)
	if err != nil {
		return nil, err
	}
	return blobstore.NewBytesBlob([]byte(head.Manifest)), nil
}

// Put appends a commit for CURRENT and writes other blobs to S3.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != CurrentName {
		return s.Store.Put(ctx, name, data)
	}
	head, err := s.Head(ctx)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return err
	}
	return s.append(ctx, head.Version+1, string(data))
}

// Head returns the newest commit, or an error matching
// blobstore.ErrNotFound when nothing has been committed.
func (s *DDBCommitStore) Head(ctx context.Context) (Commit, error) {
	out, err := s.ddb.Query(ctx, s.queryInput(aws.Int32(1), nil))
	if err != nil {
		return Commit{}, fmt.Errorf("query commit log: %w", err)
	}
	commits, err := decodeCommits(out.Items)
	if err != nil {
		return Commit{}, err
	}
	if len(commits) == 0 {
		return Commit{}, blobstore.ErrNotFound
	}
	return commits[0], nil
}

// History returns every commit, newest first.
func (s *DDBCommitStore) History(ctx context.Context) ([]Commit, error) {
	var (
		all   []Commit
		start map[string]types.AttributeValue
	)
	for {
		out, err := s.ddb.Query(ctx, s.queryInput(nil, start))
		if err != nil {
			return nil, fmt.Errorf("query commit log: %w", err)
		}
		page, err := decodeCommits(out.Items)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return all, nil
		}
		start = out.LastEvaluatedKey
	}
}

func (s *DDBCommitStore) queryInput(limit *int32, start map[string]types.AttributeValue) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("store_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.uri},
		},
		ScanIndexForward:  aws.Bool(false),
		Limit:             limit,
		ExclusiveStartKey: start,
		ConsistentRead:    aws.Bool(true),
	}
}

func (s *DDBCommitStore) append(ctx context.Context, version uint64, manifest string) error {
	_, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"store_uri":    &types.AttributeValueMemberS{Value: s.uri},
			"version":      &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"manifest":     &types.AttributeValueMemberS{Value: manifest},
			"committed_at": &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	var conflict *types.ConditionalCheckFailedException
	if errors.As(err, &conflict) {
		return fmt.Errorf("%w: version %d", ErrConcurrentModification, version)
	}
	if err != nil {
		return fmt.Errorf("append commit %d: %w", version, err)
	}
	return nil
}

func decodeCommits(items []map[string]types.AttributeValue) ([]Commit, error) {
	commits := make([]Commit, 0, len(items))
	for _, item := range items {
		version, ok := item["version"].(*types.AttributeValueMemberN)
		if !ok {
			return nil, errors.New("s3: commit without version")
		}
		manifest, ok := item["manifest"].(*types.AttributeValueMemberS)
		if !ok {
			return nil, errors.New("s3: commit without manifest")
		}
		v, err := strconv.ParseUint(version.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("s3: commit version %q: %w", version.Value, err)
		}
		c := Commit{Version: v, Manifest: manifest.Value}
		if at, ok := item["committed_at"].(*types.AttributeValueMemberS); ok {
			c.CommittedAt, _ = time.Parse(time.RFC3339Nano, at.Value)
		}
		commits = append(commits, c)
	}
	return commits, nil
}
