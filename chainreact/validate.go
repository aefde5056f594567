package chainreact

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func invalid(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, what, err)
}

func validateID(kind, id string) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return invalid(kind+" id", err)
	}
	return nil
}

// Validate checks the request before it is sent
func (r CreateWorkflowRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
	if err != nil {
		return invalid("create workflow", err)
	}
	return nil
}

// Validate checks the request before it is sent
func (r CreateWebhookRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.EventTypes, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.TargetURL, validation.Required, is.RequestURL),
	)
	if err != nil {
		return invalid("create webhook", err)
	}
	return nil
}

// Validate checks the query before it is sent
func (q AnalyticsQuery) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.Granularity, validation.In(GranularityDay, GranularityWeek, GranularityMonth)),
	)
	if err != nil {
		return invalid("analytics query", err)
	}
	return nil
}
