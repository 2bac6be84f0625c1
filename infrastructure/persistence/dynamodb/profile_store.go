package dynamodb

import (
	"context"
	"fmt"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const profileSK = "PROFILE"

// ProfileStore implements ports.ProfileStore on the same table as the
// graph, one PROFILE item per user partition.
type ProfileStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewProfileStore creates a ProfileStore.
func NewProfileStore(client *dynamodb.Client, tableName string) ports.ProfileStore {
	return &ProfileStore{client: client, tableName: tableName}
}

type profileItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`

	UserID      string `dynamodbav:"UserID"`
	Name        string `dynamodbav:"Name"`
	Gender      string `dynamodbav:"Gender"`
	Title       string `dynamodbav:"Title"`
	Location    string `dynamodbav:"Location"`
	Bio         string `dynamodbav:"Bio"`
	Summary     string `dynamodbav:"Summary"`
	Background  string `dynamodbav:"Background"`
	Skills      string `dynamodbav:"Skills"`
	Interests   string `dynamodbav:"Interests"`
	Goal        string `dynamodbav:"Goal"`
	Aspirations string `dynamodbav:"Aspirations"`
	Values      string `dynamodbav:"Values"`
	Challenges  string `dynamodbav:"Challenges"`
}

// GetProfile returns the user's profile, or nil when none is stored.
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*lifepath.UserProfile, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: profileSK},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile for %q: %w", userID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item profileItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile for %q: %w", userID, err)
	}
	return &lifepath.UserProfile{
		UserID:      item.UserID,
		Name:        item.Name,
		Gender:      item.Gender,
		Title:       item.Title,
		Location:    item.Location,
		Bio:         item.Bio,
		Summary:     item.Summary,
		Background:  item.Background,
		Skills:      item.Skills,
		Interests:   item.Interests,
		Goal:        item.Goal,
		Aspirations: item.Aspirations,
		Values:      item.Values,
		Challenges:  item.Challenges,
	}, nil
}

// SaveProfile upserts the profile.
func (s *ProfileStore) SaveProfile(ctx context.Context, profile lifepath.UserProfile) error {
	item := profileItem{
		PK:          userPK(profile.UserID),
		SK:          profileSK,
		EntityType:  "PROFILE",
		UserID:      profile.UserID,
		Name:        profile.Name,
		Gender:      profile.Gender,
		Title:       profile.Title,
		Location:    profile.Location,
		Bio:         profile.Bio,
		Summary:     profile.Summary,
		Background:  profile.Background,
		Skills:      profile.Skills,
		Interests:   profile.Interests,
		Goal:        profile.Goal,
		Aspirations: profile.Aspirations,
		Values:      profile.Values,
		Challenges:  profile.Challenges,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to save profile for %q: %w", profile.UserID, err)
	}
	return nil
}
