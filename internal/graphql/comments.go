package graphql

import (
	"context"

	"github.com/chazuruo/aoss-console/internal/comments"
)

const listCommentsQuery = `query ListComments($filter: TableCommentFilterInput, $limit: Int, $nextToken: String) {
  listComments(filter: $filter, limit: $limit, nextToken: $nextToken) {
    items { screenname text author timestamp pinX pinY }
    nextToken
  }
}`

const createCommentMutation = `mutation CreateComment($input: CreateCommentInput!) {
  createComment(input: $input) { screenname text author timestamp pinX pinY }
}`

const updateCommentMutation = `mutation UpdateComment($input: UpdateCommentInput!) {
  updateComment(input: $input) { screenname text author timestamp pinX pinY }
}`

const deleteCommentMutation = `mutation DeleteComment($input: DeleteCommentInput!) {
  deleteComment(input: $input) { screenname timestamp }
}`

// listPageSize is the limit sent with each ListComments page.
const listPageSize = 100

// CommentStore is the remote comment store behind the overlay.
type CommentStore struct {
	client *Client
}

var _ comments.Remote = (*CommentStore)(nil)

// NewCommentStore wraps c.
func NewCommentStore(c *Client) *CommentStore {
	return &CommentStore{client: c}
}

type commentInput struct {
	ScreenName string `json:"screenname"`
	Text       string `json:"text,omitempty"`
	Author     string `json:"author,omitempty"`
	Timestamp  string `json:"timestamp"`
	PinX       *int   `json:"pinX,omitempty"`
	PinY       *int   `json:"pinY,omitempty"`
}

// List returns every comment on screen, following pagination tokens.
func (s *CommentStore) List(ctx context.Context, screen string) ([]comments.Comment, error) {
	var out []comments.Comment
	var token *string
	for {
		vars := map[string]any{
			"filter": map[string]any{"screenname": map[string]any{"eq": screen}},
			"limit":  listPageSize,
		}
		if token != nil {
			vars["nextToken"] = *token
		}

		var data struct {
			ListComments struct {
				Items     []comments.Comment `json:"items"`
				NextToken *string            `json:"nextToken"`
			} `json:"listComments"`
		}
		if err := s.client.Do(ctx, Request{Query: listCommentsQuery, Variables: vars, OperationName: "ListComments"}, &data); err != nil {
			return nil, err
		}
		out = append(out, data.ListComments.Items...)

		token = data.ListComments.NextToken
		if token == nil || *token == "" {
			return out, nil
		}
	}
}

// Create stores c and returns the record as the server saw it.
func (s *CommentStore) Create(ctx context.Context, c comments.Comment) (comments.Comment, error) {
	input := commentInput{
		ScreenName: c.ScreenName,
		Text:       c.Text,
		Author:     c.Author,
		Timestamp:  c.Timestamp,
		PinX:       c.PinX,
		PinY:       c.PinY,
	}
	var data struct {
		CreateComment comments.Comment `json:"createComment"`
	}
	err := s.client.Do(ctx, Request{
		Query:         createCommentMutation,
		Variables:     map[string]any{"input": input},
		OperationName: "CreateComment",
	}, &data)
	if err != nil {
		return comments.Comment{}, err
	}
	return data.CreateComment, nil
}

// Update replaces the text of the comment keyed by (screen, timestamp).
func (s *CommentStore) Update(ctx context.Context, screen, timestamp, text string) (comments.Comment, error) {
	var data struct {
		UpdateComment comments.Comment `json:"updateComment"`
	}
	err := s.client.Do(ctx, Request{
		Query:         updateCommentMutation,
		Variables:     map[string]any{"input": commentInput{ScreenName: screen, Timestamp: timestamp, Text: text}},
		OperationName: "UpdateComment",
	}, &data)
	if err != nil {
		return comments.Comment{}, err
	}
	return data.UpdateComment, nil
}

// Delete removes the comment keyed by (screen, timestamp).
func (s *CommentStore) Delete(ctx context.Context, screen, timestamp string) error {
	return s.client.Do(ctx, Request{
		Query:         deleteCommentMutation,
		Variables:     map[string]any{"input": commentInput{ScreenName: screen, Timestamp: timestamp}},
		OperationName: "DeleteComment",
	}, nil)
}
