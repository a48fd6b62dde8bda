package models

import (
	"errors"
	"io"
	"strconv"
)

type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "Open"
	OrderStatusPartialShipped  OrderStatus = "PartialShipped"
	OrderStatusShippedComplete OrderStatus = "ShippedComplete"
	OrderStatusOverShipped     OrderStatus = "OverShipped"
)

// convert enum to send response
func (t OrderStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

// convert input to enum type
func (t *OrderStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("order status must be string")
	}
	switch str {
	case "Open":
		*t = OrderStatusOpen
	case "PartialShipped":
		*t = OrderStatusPartialShipped
	case "ShippedComplete":
		*t = OrderStatusShippedComplete
	case "OverShipped":
		*t = OrderStatusOverShipped
	default:
		return errors.New("invalid order status")
	}
	return nil
}

type HeaderStatus string

const (
	HeaderStatusOpen      HeaderStatus = "Open"
	HeaderStatusClosed    HeaderStatus = "Closed"
	HeaderStatusCancelled HeaderStatus = "Cancelled"
)

func (t HeaderStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *HeaderStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("header status must be string")
	}
	switch str {
	case "Open":
		*t = HeaderStatusOpen
	case "Closed":
		*t = HeaderStatusClosed
	case "Cancelled":
		*t = HeaderStatusCancelled
	default:
		return errors.New("invalid header status")
	}
	return nil
}

type InvoiceStatus string

const (
	InvoiceStatusOpen InvoiceStatus = "Open"
	InvoiceStatusPaid InvoiceStatus = "Paid"
)

func (t InvoiceStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *InvoiceStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("invoice status must be string")
	}
	switch str {
	case "Open":
		*t = InvoiceStatusOpen
	case "Paid":
		*t = InvoiceStatusPaid
	default:
		return errors.New("invalid invoice status")
	}
	return nil
}

type CreditStatus string

const (
	CreditStatusPending CreditStatus = "Pending"
	CreditStatusPosted  CreditStatus = "Posted"
)

func (t CreditStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *CreditStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("credit status must be string")
	}
	switch str {
	case "Pending":
		*t = CreditStatusPending
	case "Posted":
		*t = CreditStatusPosted
	default:
		return errors.New("invalid credit status")
	}
	return nil
}

type CheckStatus string

const (
	CheckStatusOpen   CheckStatus = "Open"
	CheckStatusPosted CheckStatus = "Posted"
)

func (t CheckStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *CheckStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("check status must be string")
	}
	switch str {
	case "Open":
		*t = CheckStatusOpen
	case "Posted":
		*t = CheckStatusPosted
	default:
		return errors.New("invalid check status")
	}
	return nil
}

type AdjustmentStatus string

const (
	AdjustmentStatusOpen   AdjustmentStatus = "Open"
	AdjustmentStatusPosted AdjustmentStatus = "Posted"
)

func (t AdjustmentStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *AdjustmentStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("adjustment status must be string")
	}
	switch str {
	case "Open":
		*t = AdjustmentStatusOpen
	case "Posted":
		*t = AdjustmentStatusPosted
	default:
		return errors.New("invalid adjustment status")
	}
	return nil
}

type JobStatus string

const (
	JobStatusBidding    JobStatus = "Bidding"
	JobStatusAwarded    JobStatus = "Awarded"
	JobStatusInProgress JobStatus = "InProgress"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusLost       JobStatus = "Lost"
)

func (t JobStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *JobStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("job status must be string")
	}
	switch str {
	case "Bidding":
		*t = JobStatusBidding
	case "Awarded":
		*t = JobStatusAwarded
	case "InProgress":
		*t = JobStatusInProgress
	case "Completed":
		*t = JobStatusCompleted
	case "Lost":
		*t = JobStatusLost
	default:
		return errors.New("invalid job status")
	}
	return nil
}

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "Draft"
	CampaignStatusScheduled CampaignStatus = "Scheduled"
	CampaignStatusSending   CampaignStatus = "Sending"
	CampaignStatusCompleted CampaignStatus = "Completed"
	CampaignStatusPaused    CampaignStatus = "Paused"
)

func (t CampaignStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *CampaignStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("campaign status must be string")
	}
	switch str {
	case "Draft":
		*t = CampaignStatusDraft
	case "Scheduled":
		*t = CampaignStatusScheduled
	case "Sending":
		*t = CampaignStatusSending
	case "Completed":
		*t = CampaignStatusCompleted
	case "Paused":
		*t = CampaignStatusPaused
	default:
		return errors.New("invalid campaign status")
	}
	return nil
}

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "Pending"
	EmailStatusSent    EmailStatus = "Sent"
	EmailStatusFailed  EmailStatus = "Failed"
	EmailStatusBounced EmailStatus = "Bounced"
)

func (t EmailStatus) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *EmailStatus) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("email status must be string")
	}
	switch str {
	case "Pending":
		*t = EmailStatusPending
	case "Sent":
		*t = EmailStatusSent
	case "Failed":
		*t = EmailStatusFailed
	case "Bounced":
		*t = EmailStatusBounced
	default:
		return errors.New("invalid email status")
	}
	return nil
}

type SendPace string

const (
	SendPaceSlow   SendPace = "Slow"
	SendPaceMedium SendPace = "Medium"
	SendPaceFast   SendPace = "Fast"
)

// PaceLimits maps a pace to its hourly upper bound on sends.
var PaceLimits = map[SendPace]int{
	SendPaceSlow:   50,
	SendPaceMedium: 200,
	SendPaceFast:   500,
}

func (t SendPace) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *SendPace) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("send pace must be string")
	}
	switch str {
	case "Slow":
		*t = SendPaceSlow
	case "Medium":
		*t = SendPaceMedium
	case "Fast":
		*t = SendPaceFast
	default:
		return errors.New("invalid send pace")
	}
	return nil
}

type LinkEntityType string

const (
	LinkEntityTypeCustomer LinkEntityType = "Customer"
	LinkEntityTypeContact  LinkEntityType = "Contact"
	LinkEntityTypeCompany  LinkEntityType = "Company"
	LinkEntityTypeJob      LinkEntityType = "Job"
	LinkEntityTypeOrder    LinkEntityType = "Order"
	LinkEntityTypeQuote    LinkEntityType = "Quote"
)

func (t LinkEntityType) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *LinkEntityType) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("link entity type must be string")
	}
	switch str {
	case "Customer":
		*t = LinkEntityTypeCustomer
	case "Contact":
		*t = LinkEntityTypeContact
	case "Company":
		*t = LinkEntityTypeCompany
	case "Job":
		*t = LinkEntityTypeJob
	case "Order":
		*t = LinkEntityTypeOrder
	case "Quote":
		*t = LinkEntityTypeQuote
	default:
		return errors.New("invalid link entity type")
	}
	return nil
}

type JobCompanyRole string

const (
	JobCompanyRoleSpecifier   JobCompanyRole = "Specifier"
	JobCompanyRoleAwardee     JobCompanyRole = "Awardee"
	JobCompanyRoleDistributor JobCompanyRole = "Distributor"
	JobCompanyRoleContractor  JobCompanyRole = "Contractor"
)

func (t JobCompanyRole) MarshalGQL(w io.Writer) {
	w.Write([]byte(strconv.Quote(string(t))))
}

func (t *JobCompanyRole) UnmarshalGQL(i interface{}) error {
	str, ok := i.(string)
	if !ok {
		return errors.New("job company role must be string")
	}
	switch str {
	case "Specifier":
		*t = JobCompanyRoleSpecifier
	case "Awardee":
		*t = JobCompanyRoleAwardee
	case "Distributor":
		*t = JobCompanyRoleDistributor
	case "Contractor":
		*t = JobCompanyRoleContractor
	default:
		return errors.New("invalid job company role")
	}
	return nil
}
