// Package dynamodb persists life-path graphs in a single DynamoDB table:
// PK = USER#{userId}, SK = NODE#{nodeId} | LINK#{linkId} | PROFILE.
// Insert-if-absent is a conditional put; cascade removal runs through
// TransactWriteItems so no partial delete is ever visible.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"
	apperrors "lifepath-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	nodeSKPrefix = "NODE#"
	linkSKPrefix = "LINK#"

	// DynamoDB caps a single TransactWriteItems call at 100 items.
	maxTransactItems = 100
)

// GraphStore implements ports.GraphStore on DynamoDB.
type GraphStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewGraphStore creates a GraphStore.
func NewGraphStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.GraphStore {
	return &GraphStore{client: client, tableName: tableName, logger: logger}
}

// nodeItem is the DynamoDB item shape for a node.
type nodeItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	NodeID       string `dynamodbav:"NodeID"`
	Name         string `dynamodbav:"Name"`
	Title        string `dynamodbav:"Title"`
	Description  string `dynamodbav:"Description"`
	NodeType     string `dynamodbav:"NodeType"`
	TimeInMonths int    `dynamodbav:"TimeInMonths"`
	ImageName    string `dynamodbav:"ImageName"`
	ImageURL     string `dynamodbav:"ImageURL"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UserID       string `dynamodbav:"UserID"`
}

// linkItem is the DynamoDB item shape for a link.
type linkItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	LinkID       string `dynamodbav:"LinkID"`
	Source       string `dynamodbav:"Source"`
	Target       string `dynamodbav:"Target"`
	TimeInMonths int    `dynamodbav:"TimeInMonths"`
	UserID       string `dynamodbav:"UserID"`
}

func userPK(userID string) string { return "USER#" + userID }
func nodeSK(nodeID string) string { return nodeSKPrefix + nodeID }
func linkSK(linkID string) string { return linkSKPrefix + linkID }

func toNodeItem(n lifepath.Node) nodeItem {
	return nodeItem{
		PK:           userPK(n.UserID),
		SK:           nodeSK(n.ID),
		EntityType:   "NODE",
		NodeID:       n.ID,
		Name:         n.Name,
		Title:        n.Title,
		Description:  n.Description,
		NodeType:     n.Type,
		TimeInMonths: n.TimeInMonths,
		ImageName:    n.ImageName,
		ImageURL:     n.ImageURL,
		CreatedAt:    n.CreatedAt.Format(time.RFC3339Nano),
		UserID:       n.UserID,
	}
}

func fromNodeItem(item nodeItem) lifepath.Node {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}
	return lifepath.Node{
		ID:           item.NodeID,
		Name:         item.Name,
		Title:        item.Title,
		Description:  item.Description,
		Type:         item.NodeType,
		TimeInMonths: item.TimeInMonths,
		ImageName:    item.ImageName,
		ImageURL:     item.ImageURL,
		CreatedAt:    createdAt,
		UserID:       item.UserID,
	}
}

func toLinkItem(l lifepath.Link) linkItem {
	return linkItem{
		PK:           userPK(l.UserID),
		SK:           linkSK(l.ID),
		EntityType:   "LINK",
		LinkID:       l.ID,
		Source:       l.Source,
		Target:       l.Target,
		TimeInMonths: l.TimeInMonths,
		UserID:       l.UserID,
	}
}

func fromLinkItem(item linkItem) lifepath.Link {
	return lifepath.Link{
		ID:           item.LinkID,
		Source:       item.Source,
		Target:       item.Target,
		TimeInMonths: item.TimeInMonths,
		UserID:       item.UserID,
	}
}

// putIfAbsent writes av unless an item with the same key exists. Returns
// whether a row was written; a conditional-check failure is a no-op.
func (s *GraphStore) putIfAbsent(ctx context.Context, av map[string]types.AttributeValue) (bool, error) {
	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return false, fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// InsertNodeIfAbsent writes the node unless its id already exists for the user.
func (s *GraphStore) InsertNodeIfAbsent(ctx context.Context, node lifepath.Node) (bool, error) {
	av, err := attributevalue.MarshalMap(toNodeItem(node))
	if err != nil {
		return false, fmt.Errorf("failed to marshal node: %w", err)
	}
	written, err := s.putIfAbsent(ctx, av)
	if err != nil {
		return false, fmt.Errorf("failed to insert node %q: %w", node.ID, err)
	}
	return written, nil
}

// InsertLinkIfAbsent writes the link unless its id already exists.
func (s *GraphStore) InsertLinkIfAbsent(ctx context.Context, link lifepath.Link) (bool, error) {
	av, err := attributevalue.MarshalMap(toLinkItem(link))
	if err != nil {
		return false, fmt.Errorf("failed to marshal link: %w", err)
	}
	written, err := s.putIfAbsent(ctx, av)
	if err != nil {
		return false, fmt.Errorf("failed to insert link %q: %w", link.ID, err)
	}
	return written, nil
}

// queryByPrefix pages through all items for a user with the given SK prefix.
func (s *GraphStore) queryByPrefix(ctx context.Context, userID, skPrefix string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith(skPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return items, nil
}

// ListNodes returns every node for the user, ordered by creation time.
func (s *GraphStore) ListNodes(ctx context.Context, userID string) ([]lifepath.Node, error) {
	items, err := s.queryByPrefix(ctx, userID, nodeSKPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}

	nodes := make([]lifepath.Node, 0, len(items))
	for _, raw := range items {
		var item nodeItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			s.logger.Warn("Failed to unmarshal node item", zap.Error(err))
			continue
		}
		nodes = append(nodes, fromNodeItem(item))
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})
	return nodes, nil
}

// ListLinks returns every link for the user.
func (s *GraphStore) ListLinks(ctx context.Context, userID string) ([]lifepath.Link, error) {
	items, err := s.queryByPrefix(ctx, userID, linkSKPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}

	links := make([]lifepath.Link, 0, len(items))
	for _, raw := range items {
		var item linkItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			s.logger.Warn("Failed to unmarshal link item", zap.Error(err))
			continue
		}
		links = append(links, fromLinkItem(item))
	}
	return links, nil
}

// GetNode returns the node with the given id for the user.
func (s *GraphStore) GetNode(ctx context.Context, userID, nodeID string) (*lifepath.Node, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: nodeSK(nodeID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get node %q: %w", nodeID, err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("node %q", nodeID))
	}

	var item nodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node %q: %w", nodeID, err)
	}
	node := fromNodeItem(item)
	return &node, nil
}

// PersistBatch idempotently inserts a whole add-node batch. A true
// persistence error partway triggers compensation: rows this call wrote
// are deleted again before the error is returned.
func (s *GraphStore) PersistBatch(ctx context.Context, nodes []lifepath.Node, links []lifepath.Link) error {
	type writtenKey struct {
		pk, sk string
	}
	var written []writtenKey

	compensate := func() {
		for _, key := range written {
			_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: key.pk},
					"SK": &types.AttributeValueMemberS{Value: key.sk},
				},
			})
			if err != nil {
				s.logger.Error("Compensation delete failed",
					zap.String("pk", key.pk),
					zap.String("sk", key.sk),
					zap.Error(err),
				)
			}
		}
	}

	for _, node := range nodes {
		ok, err := s.InsertNodeIfAbsent(ctx, node)
		if err != nil {
			compensate()
			return err
		}
		if ok {
			written = append(written, writtenKey{pk: userPK(node.UserID), sk: nodeSK(node.ID)})
		}
	}
	for _, link := range links {
		ok, err := s.InsertLinkIfAbsent(ctx, link)
		if err != nil {
			compensate()
			return err
		}
		if ok {
			written = append(written, writtenKey{pk: userPK(link.UserID), sk: linkSK(link.ID)})
		}
	}
	return nil
}

// DeleteNodesAndLinks removes every link touching the node set, then the
// nodes, through TransactWriteItems. Link deletes are ordered before node
// deletes so a failure between transaction chunks can never leave a
// dangling link.
func (s *GraphStore) DeleteNodesAndLinks(ctx context.Context, userID string, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}

	inSet := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		inSet[id] = true
	}

	links, err := s.ListLinks(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list links for delete: %w", err)
	}

	var items []types.TransactWriteItem
	for _, l := range links {
		if inSet[l.Source] || inSet[l.Target] {
			items = append(items, s.deleteItem(userPK(userID), linkSK(l.ID)))
		}
	}
	for _, id := range nodeIDs {
		items = append(items, s.deleteItem(userPK(userID), nodeSK(id)))
	}

	for start := 0; start < len(items); start += maxTransactItems {
		end := start + maxTransactItems
		if end > len(items) {
			end = len(items)
		}
		_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items[start:end],
		})
		if err != nil {
			return fmt.Errorf("failed to delete nodes and links: %w", err)
		}
	}

	s.logger.Info("Deleted nodes and links",
		zap.String("userID", userID),
		zap.Int("nodes", len(nodeIDs)),
		zap.Int("items", len(items)),
	)
	return nil
}

func (s *GraphStore) deleteItem(pk, sk string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: pk},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		},
	}
}

// InstantiateRoot creates the user's root node if no node matching the
// reserved pattern exists. The conditional put makes concurrent calls for
// the same user collapse to a single created root.
func (s *GraphStore) InstantiateRoot(ctx context.Context, userID string) (bool, string, error) {
	// Legacy graphs may carry a bare "Now" root; accept either form.
	for _, id := range []string{lifepath.RootName, lifepath.RootNodeID(userID)} {
		node, err := s.GetNode(ctx, userID, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return false, "", err
		}
		return false, node.ID, nil
	}

	root := lifepath.NewRootNode(userID)
	created, err := s.InsertNodeIfAbsent(ctx, root)
	if err != nil {
		return false, "", fmt.Errorf("failed to create root node: %w", err)
	}
	return created, root.ID, nil
}
