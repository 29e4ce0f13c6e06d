package aiproxy

import "context"

// GetFileContent downloads the raw content of an uploaded file.
func (c *Client) GetFileContent(ctx context.Context, id string) ([]byte, error) {
	seg, err := pathSegment("file id", id)
	if err != nil {
		return nil, err
	}
	resp, err := c.GetBinary(ctx, "/files/"+seg+"/content", nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
