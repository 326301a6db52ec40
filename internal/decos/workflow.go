package decos

import (
	"context"
	"net/url"

	"cloud.google.com/go/civil"

	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
)

var workflowStepQuery = url.Values{
	"properties":         {"false"},
	"fetchParents":       {"false"},
	"oDataQuery.select":  {"mark,date1,date2,text7,sequence"},
	"oDataQuery.orderBy": {"sequence"},
}

// WorkflowDate returns the date the most recent workflow of a case reached
// stepTitle, or nil when the case has no workflow or never reached that step.
// When a step occurs more than once the last occurrence wins.
func (c *Client) WorkflowDate(ctx context.Context, caseKey, stepTitle string) (*civil.Date, error) {
	var workflows itemPage
	if err := c.getJSON(ctx, "workflows", "items/"+url.PathEscape(caseKey)+"/workflows", nil, &workflows); err != nil {
		return nil, err
	}
	if workflows.Count == 0 || len(workflows.Content) == 0 {
		return nil, nil
	}
	latest := workflows.Content[len(workflows.Content)-1].Key

	var steps itemPage
	if err := c.getJSON(ctx, "workflow_steps", "items/"+url.PathEscape(latest)+"/workflowlinkinstances", workflowStepQuery, &steps); err != nil {
		return nil, err
	}

	var reached *civil.Date
	for _, step := range steps.Content {
		title, ok := step.Fields["text7"].(string)
		if !ok || title != stepTitle {
			continue
		}
		v, err := zaken.ToDate(step.Fields["date1"])
		if err != nil || v == nil {
			reached = nil
			continue
		}
		d := v.(civil.Date)
		reached = &d
	}
	return reached, nil
}
