package submission

import (
	"context"
	"net/http"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"

	"github.com/tax-intl/epaye-go/libs/clients/chris"
	"github.com/tax-intl/epaye-go/libs/govtalk"
	"github.com/tax-intl/epaye-go/libs/handlers"
	"github.com/tax-intl/epaye-go/libs/inputs"
	"github.com/tax-intl/epaye-go/libs/logging"
	"github.com/tax-intl/epaye-go/libs/middleware"
	"github.com/tax-intl/epaye-go/libs/ptr"
	"github.com/tax-intl/epaye-go/libs/requestutils"
	_ "github.com/tax-intl/epaye-go/libs/validators"
)

// Router for submission gateway endpoints
func Router(service *Service) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.NewServiceCtx(service))
	r.Method("POST", "/create-and-track", middleware.InstrumentHandler("CreateSubmission", CreateSubmission(service)))
	r.Method("POST", "/{submissionID}/submit-to-chris", middleware.InstrumentHandler("SubmitSubmission", SubmitSubmission(service)))
	r.Method("POST", "/{submissionID}/update", middleware.InstrumentHandler("UpdateSubmission", UpdateSubmission(service)))
	r.Method("GET", "/poll", middleware.InstrumentHandler("PollSubmission", PollSubmission(service)))
	return r
}

// CreateSubmissionRequest includes the fields necessary to track a new filing period
type CreateSubmissionRequest struct {
	InstanceID *string `json:"instanceId" valid:"required"`
	TaxYear    *int    `json:"taxYear" valid:"required"`
	TaxMonth   *int    `json:"taxMonth" valid:"required,range(1|12)"`
}

// CreateSubmissionResponse returns the id the filing period is tracked under
type CreateSubmissionResponse struct {
	SubmissionID string `json:"submissionId"`
}

// CreateFailureResponse is the fixed body for a create the CHRIS bridge rejected
type CreateFailureResponse struct {
	Message string `json:"message"`
}

// SubmitRequest includes the employer references and declarations necessary to file
type SubmitRequest struct {
	UTR                *string `json:"utr" valid:"required,utr"`
	AOReference        *string `json:"aoReference" valid:"required,aoreference"`
	InformationCorrect *bool   `json:"informationCorrect" valid:"-"`
	Inactivity         *bool   `json:"inactivity" valid:"-"`
	MonthYear          *string `json:"monthYear" valid:"required,monthyear"`
}

// SubmitFailureResponse is the fixed body for a dispatch the CHRIS bridge rejected
type SubmitFailureResponse struct {
	SubmissionID      string       `json:"submissionId"`
	Status            chris.Status `json:"status"`
	HMRCMarkGenerated bool         `json:"hmrcMarkGenerated"`
	Error             string       `json:"error"`
}

// UpdateSubmissionRequest mutates a tracked filing period
type UpdateSubmissionRequest struct {
	InstanceID        *string `json:"instanceId" valid:"required"`
	TaxYear           *int    `json:"taxYear" valid:"required"`
	TaxMonth          *int    `json:"taxMonth" valid:"required,range(1|12)"`
	SubmittableStatus *string `json:"submittableStatus" valid:"required"`
}

// UpdateFailureResponse is the fixed body for an update the CHRIS bridge rejected
type UpdateFailureResponse struct {
	SubmissionID string `json:"submissionId"`
	Message      string `json:"message"`
}

// CreateSubmission is the handler for tracking a new filing period
func CreateSubmission(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()
		logger := logging.Logger(ctx, "submission.CreateSubmission")

		authority, err := service.auth.Authority(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("request failed the enrolment check")
			return handlers.WrapError(err, "Error authorizing request", http.StatusUnauthorized)
		}

		var req CreateSubmissionRequest
		err = requestutils.ReadJSON(ctx, r.Body, &req)
		if err != nil {
			return handlers.WrapError(err, "Error in request body", http.StatusBadRequest)
		}

		_, err = govalidator.ValidateStruct(req)
		if err != nil {
			return handlers.WrapValidationError(err)
		}

		service.emitRequestEvent(ctx, r, authority, "", "", ptr.String(req.InstanceID), req)

		submissionID, err := service.chris.Create(ctx, chris.CreateRequest{
			InstanceID: ptr.String(req.InstanceID),
			TaxYear:    ptr.Int(req.TaxYear),
			TaxMonth:   ptr.Int(req.TaxMonth),
		})
		if err != nil {
			logger.Error().Err(err).Msg("create rejected by the chris bridge")
			return handlers.RenderContent(ctx, CreateFailureResponse{
				Message: "create-submission-failed",
			}, w, http.StatusBadGateway)
		}

		return handlers.RenderContent(ctx, CreateSubmissionResponse{
			SubmissionID: submissionID,
		}, w, http.StatusCreated)
	})
}

// SubmitSubmission is the handler for dispatching a tracked filing to CHRIS
func SubmitSubmission(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()
		logger := logging.Logger(ctx, "submission.SubmitSubmission")

		authority, err := service.auth.Authority(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("request failed the enrolment check")
			return handlers.WrapError(err, "Error authorizing request", http.StatusUnauthorized)
		}

		submissionID := chi.URLParam(r, "submissionID")
		logging.AddSubmissionIDToContext(ctx, submissionID)

		var req SubmitRequest
		err = requestutils.ReadJSON(ctx, r.Body, &req)
		if err != nil {
			return handlers.WrapError(err, "Error in request body", http.StatusBadRequest)
		}

		// false is a meaningful value for the declarations, required tags
		// cannot tell it from absent so presence is checked by hand
		declarations := map[string]string{}
		if req.InformationCorrect == nil {
			declarations["informationCorrect"] = "non zero value required"
		}
		if req.Inactivity == nil {
			declarations["inactivity"] = "non zero value required"
		}
		if len(declarations) > 0 {
			return handlers.ValidationError("request body", declarations)
		}

		_, err = govalidator.ValidateStruct(req)
		if err != nil {
			return handlers.WrapValidationError(err)
		}

		correlationID := govtalk.NewCorrelationID()

		envelope, err := service.builder.Build(govtalk.Filing{
			UTR:                     ptr.String(req.UTR),
			AccountsOfficeReference: ptr.String(req.AOReference),
			TaxOfficeNumber:         authority.TaxOfficeNumber,
			TaxOfficeReference:      authority.TaxOfficeReference,
			MonthYear:               ptr.String(req.MonthYear),
			Inactivity:              ptr.Bool(req.Inactivity),
			InformationCorrect:      ptr.Bool(req.InformationCorrect),
		}, correlationID, service.flags)
		if err != nil {
			logger.Error().Err(err).Msg("failed to build the filing envelope")
			return handlers.WrapError(err, "Error building filing envelope", http.StatusInternalServerError)
		}

		service.emitRequestEvent(ctx, r, authority, submissionID, correlationID, "", req)

		outcome, err := service.chris.Submit(ctx, envelope)
		if err != nil {
			logger.Error().Err(err).Str("submissionId", submissionID).Msg("submit rejected by the chris bridge")
			failure := &SubmitFailureResponse{
				SubmissionID:      submissionID,
				Status:            chris.StatusFatalError,
				HMRCMarkGenerated: envelope.IRMarkGenerated,
				Error:             "upstream-failure",
			}
			service.emitResponseEvent(ctx, r, strconv.Itoa(http.StatusBadGateway), submissionID, correlationID, marshalPayload(failure))
			return handlers.RenderContent(ctx, failure, w, http.StatusBadGateway)
		}

		body, code := service.RenderOutcome(ctx, r, submissionID, envelope.IRMarkGenerated, outcome)
		return handlers.RenderContent(ctx, body, w, code)
	})
}

// UpdateSubmission is the handler for updating a tracked filing period
func UpdateSubmission(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()
		logger := logging.Logger(ctx, "submission.UpdateSubmission")

		_, err := service.auth.Authority(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("request failed the enrolment check")
			return handlers.WrapError(err, "Error authorizing request", http.StatusUnauthorized)
		}

		submissionID := chi.URLParam(r, "submissionID")
		logging.AddSubmissionIDToContext(ctx, submissionID)

		var req UpdateSubmissionRequest
		err = requestutils.ReadJSON(ctx, r.Body, &req)
		if err != nil {
			return handlers.WrapError(err, "Error in request body", http.StatusBadRequest)
		}

		_, err = govalidator.ValidateStruct(req)
		if err != nil {
			return handlers.WrapValidationError(err)
		}

		err = service.chris.Update(ctx, submissionID, chris.UpdateRequest{
			InstanceID:        ptr.String(req.InstanceID),
			TaxYear:           ptr.Int(req.TaxYear),
			TaxMonth:          ptr.Int(req.TaxMonth),
			SubmittableStatus: ptr.String(req.SubmittableStatus),
		})
		if err != nil {
			logger.Error().Err(err).Str("submissionId", submissionID).Msg("update rejected by the chris bridge")
			return handlers.RenderContent(ctx, UpdateFailureResponse{
				SubmissionID: submissionID,
				Message:      "update-submission-failed",
			}, w, http.StatusBadGateway)
		}

		w.WriteHeader(http.StatusNoContent)
		return nil
	})
}

// PollSubmission is the handler for resolving a poll token
func PollSubmission(service *Service) handlers.AppHandler {
	return handlers.AppHandler(func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()
		logger := logging.Logger(ctx, "submission.PollSubmission")

		authority, err := service.auth.Authority(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("request failed the enrolment check")
			return handlers.WrapError(err, "Error authorizing request", http.StatusUnauthorized)
		}

		var correlationID = new(inputs.CorrelationID)
		if err := inputs.DecodeAndValidateString(context.Background(), correlationID, r.URL.Query().Get("correlationId")); err != nil {
			logger.Warn().Err(err).Msg("correlation id failed to decode")
			return handlers.ValidationError("query parameter", map[string]string{
				"correlationId": err.Error(),
			})
		}

		response, err := service.EvaluatePoll(r.URL.Query().Get("pollUrl"), correlationID.String(), authority.TaxOfficeNumber)
		if err != nil {
			logger.Warn().Err(err).Msg("poll token failed to decode")
			return handlers.ValidationError("poll url parameter", map[string]string{
				"pollUrl": "timestamp must be an RFC3339 instant",
			})
		}

		return handlers.RenderContent(ctx, response, w, http.StatusOK)
	})
}
