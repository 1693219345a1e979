package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/goodtune/classwatch/internal/storage"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	scanPages    []*dynamodb.ScanOutput
	scanErr      error
	lastPutInput *dynamodb.PutItemInput
	scanInputs   []*dynamodb.ScanInput
}

func (f *fakeDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	page := f.scanPages[0]
	f.scanPages = f.scanPages[1:]
	return page, nil
}

func makeItem(id, status, micros string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrStudentID: &types.AttributeValueMemberS{Value: id},
		attrStatus:    &types.AttributeValueMemberS{Value: status},
		attrTimestamp: &types.AttributeValueMemberN{Value: micros},
	}
}

func mustNewStore(t *testing.T, db *fakeDynamo) *Store {
	t.Helper()
	s, err := New(db, "test-table")
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "table")
	require.Error(t, err)

	_, err = New(&fakeDynamo{}, "   ")
	require.Error(t, err)
}

func TestPut_WritesItem(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewStore(t, db)

	ts := time.UnixMicro(1700000000123456)
	require.NoError(t, s.Put(context.Background(), "leona", storage.StatusRecord{Status: "Engaged", Timestamp: ts}))

	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "test-table", *db.lastPutInput.TableName)
	item := db.lastPutInput.Item
	require.Equal(t, "leona", item[attrStudentID].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "Engaged", item[attrStatus].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "1700000000123456", item[attrTimestamp].(*types.AttributeValueMemberN).Value)
}

func TestPut_PropagatesError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("throttled")}
	s := mustNewStore(t, db)

	err := s.Put(context.Background(), "leona", storage.StatusRecord{Status: "Engaged", Timestamp: time.Now()})
	require.ErrorContains(t, err, "throttled")
}

func TestGet_NotFound(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewStore(t, db)

	_, err := s.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGet_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: makeItem("leona", "Zoned Out", "1700000000000000")}}
	s := mustNewStore(t, db)

	rec, err := s.Get(context.Background(), "leona")
	require.NoError(t, err)
	require.Equal(t, "Zoned Out", rec.Status)
	require.True(t, rec.Timestamp.Equal(time.Unix(1700000000, 0)))
}

func TestAll_FollowsPagination(t *testing.T) {
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{makeItem("a", "Engaged", "1")},
			LastEvaluatedKey: map[string]types.AttributeValue{attrStudentID: &types.AttributeValueMemberS{Value: "a"}},
		},
		{
			Items: []map[string]types.AttributeValue{makeItem("b", "Zoned Out", "2")},
		},
	}}
	s := mustNewStore(t, db)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Engaged", all["a"].Status)
	require.Equal(t, "Zoned Out", all["b"].Status)

	require.Len(t, db.scanInputs, 2)
	require.Nil(t, db.scanInputs[0].ExclusiveStartKey)
	require.NotNil(t, db.scanInputs[1].ExclusiveStartKey)
}

func TestAll_EmptyTable(t *testing.T) {
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{{}}}
	s := mustNewStore(t, db)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	require.NotNil(t, all)
	require.Empty(t, all)
}

func TestAll_SkipsMalformedItem(t *testing.T) {
	bad := map[string]types.AttributeValue{attrStudentID: &types.AttributeValueMemberS{Value: "x"}}
	good := map[string]types.AttributeValue{
		attrStudentID: &types.AttributeValueMemberS{Value: "y"},
		attrStatus:    &types.AttributeValueMemberS{Value: "Engaged"},
		attrTimestamp: &types.AttributeValueMemberN{Value: "1714554000000000"},
	}
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{bad, good}}}}
	s := mustNewStore(t, db)

	snapshot, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	require.Equal(t, "Engaged", snapshot["y"].Status)
}

func TestLen_SumsPages(t *testing.T) {
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{Count: 3, LastEvaluatedKey: map[string]types.AttributeValue{attrStudentID: &types.AttributeValueMemberS{Value: "c"}}},
		{Count: 2},
	}}
	s := mustNewStore(t, db)

	n, err := s.Len(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, types.SelectCount, db.scanInputs[0].Select)
}
