package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wasmforge/forgectl/internal/execshell"
)

const (
	silentFlagConstant                    = "-sS"
	failWithBodyFlagConstant              = "--fail-with-body"
	methodFlagConstant                    = "-X"
	dataBinaryFlagConstant                = "--data-binary"
	stdinReferenceConstant                = "@-"
	fileReferenceTemplateConstant         = "@%s"
	httpMethodPostConstant                = "POST"
	httpMethodPutConstant                 = "PUT"
	invokeEndpointTemplateConstant        = "http://%s:%d/f/"
	uploadEndpointTemplateConstant        = "http://%s:%d/f/%s/%s"
	sharedFileEndpointTemplateConstant    = "http://%s:%d/file/"
	sharedFilePathHeaderTemplateConstant  = "FilePath: %s"
	headerFlagConstant                    = "-H"
	userFieldNameConstant                 = "user"
	functionFieldNameConstant             = "function"
	inputDataFieldNameConstant            = "input_data"
	asyncFieldNameConstant                = "async"
	statusFieldNameConstant               = "status"
	callIdentifierFieldNameConstant       = "id"
	filePathFieldNameConstant             = "file_path"
	wasmPathFieldNameConstant             = "wasm_path"
	hostFieldNameConstant                 = "host"
	callStatusJSONPathConstant            = "status"
	callOutputJSONPathConstant            = "output"
	callIdentifierJSONPathConstant        = "call_id"
	requiredValueMessageConstant          = "value required"
	executorNotConfiguredMessageConstant  = "gateway curl executor not configured"
	operationErrorTemplateConstant        = "%s operation failed"
	operationErrorWithCauseTemplate       = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant  = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant     = "%s: %s"
	invokeOperationNameConstant           = OperationName("InvokeFunction")
	invokeAsyncOperationNameConstant      = OperationName("InvokeFunctionAsync")
	callStatusOperationNameConstant       = OperationName("CallStatus")
	uploadFunctionOperationNameConstant   = OperationName("UploadFunction")
	uploadSharedFileOperationNameConstant = OperationName("UploadSharedFile")
	defaultInvokePortConstant             = 8080
	defaultUploadPortConstant             = 8002
)

// OperationName describes a named gateway workflow supported by the client.
type OperationName string

// CallState enumerates the lifecycle states the gateway reports for a call.
type CallState string

// Call states reported by the gateway status endpoint.
const (
	CallStateRunning   CallState = CallState("RUNNING")
	CallStateSucceeded CallState = CallState("SUCCESS")
	CallStateFailed    CallState = CallState("FAILED")
)

// Endpoints addresses the gateway's invoke and upload listeners.
type Endpoints struct {
	Host       string
	InvokePort int
	UploadPort int
}

// InvocationRequest describes a function call submitted to the gateway.
type InvocationRequest struct {
	User      string
	Function  string
	InputData string
}

// InvocationResult carries the synchronous output of a function call.
type InvocationResult struct {
	Output string
}

// AsyncInvocationResult carries the call identifier of an asynchronous call.
type AsyncInvocationResult struct {
	CallIdentifier string
}

// CallStatus reports the lifecycle state and output of an asynchronous call.
type CallStatus struct {
	State  CallState
	Output string
}

// CurlCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CurlCommandExecutor interface {
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates gateway HTTP calls through curl invocations.
type Client struct {
	executor  CurlCommandExecutor
	endpoints Endpoints
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for gateway operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplate, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates gateway responses that could not be parsed.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

var errMalformedStatusResponse = errors.New("status response missing status field")
var errMissingCallIdentifier = errors.New("async response missing call_id field")

// NewClient constructs a gateway client for the provided endpoints.
func NewClient(executor CurlCommandExecutor, endpoints Endpoints) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if len(strings.TrimSpace(endpoints.Host)) == 0 {
		return nil, InvalidInputError{FieldName: hostFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if endpoints.InvokePort <= 0 {
		endpoints.InvokePort = defaultInvokePortConstant
	}
	if endpoints.UploadPort <= 0 {
		endpoints.UploadPort = defaultUploadPortConstant
	}
	return &Client{executor: executor, endpoints: endpoints}, nil
}

// InvokeFunction executes a function synchronously and returns its output.
func (client *Client) InvokeFunction(executionContext context.Context, request InvocationRequest) (InvocationResult, error) {
	payloadBytes, encodingError := client.encodeInvocationPayload(request, false)
	if encodingError != nil {
		return InvocationResult{}, encodingError
	}

	executionResult, executionError := client.postInvoke(executionContext, payloadBytes)
	if executionError != nil {
		return InvocationResult{}, OperationError{Operation: invokeOperationNameConstant, Cause: executionError}
	}

	return InvocationResult{Output: executionResult.StandardOutput}, nil
}

// InvokeFunctionAsync submits a function call and returns its call identifier.
func (client *Client) InvokeFunctionAsync(executionContext context.Context, request InvocationRequest) (AsyncInvocationResult, error) {
	payloadBytes, encodingError := client.encodeInvocationPayload(request, true)
	if encodingError != nil {
		return AsyncInvocationResult{}, encodingError
	}

	executionResult, executionError := client.postInvoke(executionContext, payloadBytes)
	if executionError != nil {
		return AsyncInvocationResult{}, OperationError{Operation: invokeAsyncOperationNameConstant, Cause: executionError}
	}

	callIdentifier := gjson.Get(executionResult.StandardOutput, callIdentifierJSONPathConstant)
	if !callIdentifier.Exists() {
		return AsyncInvocationResult{}, ResponseDecodingError{Operation: invokeAsyncOperationNameConstant, Cause: errMissingCallIdentifier}
	}

	return AsyncInvocationResult{CallIdentifier: callIdentifier.String()}, nil
}

// CallStatus queries the gateway for the state of an asynchronous call.
func (client *Client) CallStatus(executionContext context.Context, callIdentifier string) (CallStatus, error) {
	trimmedIdentifier := strings.TrimSpace(callIdentifier)
	if len(trimmedIdentifier) == 0 {
		return CallStatus{}, InvalidInputError{FieldName: callIdentifierFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := map[string]any{
		statusFieldNameConstant:         true,
		callIdentifierFieldNameConstant: trimmedIdentifier,
	}
	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return CallStatus{}, PayloadEncodingError{Operation: callStatusOperationNameConstant, Cause: encodingError}
	}

	executionResult, executionError := client.postInvoke(executionContext, payloadBytes)
	if executionError != nil {
		return CallStatus{}, OperationError{Operation: callStatusOperationNameConstant, Cause: executionError}
	}

	statusValue := gjson.Get(executionResult.StandardOutput, callStatusJSONPathConstant)
	if !statusValue.Exists() {
		return CallStatus{}, ResponseDecodingError{Operation: callStatusOperationNameConstant, Cause: errMalformedStatusResponse}
	}

	return CallStatus{
		State:  CallState(statusValue.String()),
		Output: gjson.Get(executionResult.StandardOutput, callOutputJSONPathConstant).String(),
	}, nil
}

// UploadFunction streams a compiled WebAssembly module to the gateway.
func (client *Client) UploadFunction(executionContext context.Context, user string, function string, wasmPath string) error {
	trimmedUser := strings.TrimSpace(user)
	if len(trimmedUser) == 0 {
		return InvalidInputError{FieldName: userFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedFunction := strings.TrimSpace(function)
	if len(trimmedFunction) == 0 {
		return InvalidInputError{FieldName: functionFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedWasmPath := strings.TrimSpace(wasmPath)
	if len(trimmedWasmPath) == 0 {
		return InvalidInputError{FieldName: wasmPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	uploadURL := fmt.Sprintf(uploadEndpointTemplateConstant, client.endpoints.Host, client.endpoints.UploadPort, trimmedUser, trimmedFunction)
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			silentFlagConstant,
			failWithBodyFlagConstant,
			methodFlagConstant,
			httpMethodPutConstant,
			dataBinaryFlagConstant,
			fmt.Sprintf(fileReferenceTemplateConstant, trimmedWasmPath),
			uploadURL,
		},
	}

	_, executionError := client.executor.ExecuteCurl(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: uploadFunctionOperationNameConstant, Cause: executionError}
	}

	return nil
}

// UploadSharedFile streams a data file into shared gateway storage.
func (client *Client) UploadSharedFile(executionContext context.Context, localPath string, remotePath string) error {
	trimmedLocalPath := strings.TrimSpace(localPath)
	if len(trimmedLocalPath) == 0 {
		return InvalidInputError{FieldName: filePathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRemotePath := strings.TrimSpace(remotePath)
	if len(trimmedRemotePath) == 0 {
		return InvalidInputError{FieldName: filePathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	uploadURL := fmt.Sprintf(sharedFileEndpointTemplateConstant, client.endpoints.Host, client.endpoints.UploadPort)
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			silentFlagConstant,
			failWithBodyFlagConstant,
			methodFlagConstant,
			httpMethodPutConstant,
			headerFlagConstant,
			fmt.Sprintf(sharedFilePathHeaderTemplateConstant, trimmedRemotePath),
			dataBinaryFlagConstant,
			fmt.Sprintf(fileReferenceTemplateConstant, trimmedLocalPath),
			uploadURL,
		},
	}

	_, executionError := client.executor.ExecuteCurl(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: uploadSharedFileOperationNameConstant, Cause: executionError}
	}

	return nil
}

func (client *Client) encodeInvocationPayload(request InvocationRequest, asynchronous bool) ([]byte, error) {
	trimmedUser := strings.TrimSpace(request.User)
	if len(trimmedUser) == 0 {
		return nil, InvalidInputError{FieldName: userFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedFunction := strings.TrimSpace(request.Function)
	if len(trimmedFunction) == 0 {
		return nil, InvalidInputError{FieldName: functionFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := map[string]any{
		userFieldNameConstant:     trimmedUser,
		functionFieldNameConstant: trimmedFunction,
	}
	if len(request.InputData) > 0 {
		payload[inputDataFieldNameConstant] = request.InputData
	}
	if asynchronous {
		payload[asyncFieldNameConstant] = true
	}

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return nil, PayloadEncodingError{Operation: invokeOperationNameConstant, Cause: encodingError}
	}
	return payloadBytes, nil
}

func (client *Client) postInvoke(executionContext context.Context, payloadBytes []byte) (execshell.ExecutionResult, error) {
	invokeURL := fmt.Sprintf(invokeEndpointTemplateConstant, client.endpoints.Host, client.endpoints.InvokePort)
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			silentFlagConstant,
			failWithBodyFlagConstant,
			methodFlagConstant,
			httpMethodPostConstant,
			dataBinaryFlagConstant,
			stdinReferenceConstant,
			invokeURL,
		},
		StandardInput: payloadBytes,
	}
	return client.executor.ExecuteCurl(executionContext, commandDetails)
}
