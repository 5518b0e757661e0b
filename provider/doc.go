// Package provider defines the payment method contract a host uses to drive card
// payments, together with the request and result types shared by every implementation.
//
// # Core Concepts
//
//   - PaymentMethod: the interface a payment method implements
//   - ProcessPaymentRequest, CaptureRequest, RefundRequest, VoidRequest: operation inputs
//   - Result: embedded by every operation result, carries Errors and ErrorKind
//   - TransactionReference: the "transactionId,authCode" string stored on an order
//   - ProviderHTTPClient: JSON over HTTP transport used to reach the gateway
//
// The PaySafe implementation lives in the paysafe subpackage.
//
// # Results Instead Of Errors
//
// Gateway operations never return Go errors. Every failure is recorded on the result,
// and the first ErrorKind recorded wins:
//
//	result := method.Capture(ctx, provider.CaptureRequest{Order: order})
//	if !result.Success() {
//	    switch result.ErrorKind {
//	    case provider.ErrorKindNetwork:
//	        // the gateway could not be reached
//	    case provider.ErrorKindGatewayRejected:
//	        // the gateway answered with errors, see result.Errors
//	    }
//	}
//
// Error kinds:
//
//   - ErrorKindNetwork: transport failure or timeout
//   - ErrorKindParse: the gateway answered with a body that could not be understood
//   - ErrorKindGatewayRejected: the gateway declined the operation
//   - ErrorKindValidation: the request was rejected before anything was sent
//   - ErrorKindNotSupported: the operation is not offered by the payment method
//
// # Payment Status
//
// Successful results carry the status the host should move the order to:
//
//   - StatusAuthorized after an authorize only payment
//   - StatusPaid after a sale or a capture
//   - StatusPartiallyRefunded or StatusRefunded after a refund
//   - StatusVoided after a void
//
// # Transaction References
//
// Authorization and capture codes are stored as "transactionId,authCode":
//
//	ref, err := provider.NewTransactionReference("11ea1", "A00001")
//	stored := ref.String() // "11ea1,A00001"
//
//	parsed, err := provider.ParseTransactionReference(stored)
//	// parsed.TransactionID == "11ea1"
//
// An id containing the delimiter is rejected with ErrInvalidReference.
package provider
