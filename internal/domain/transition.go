package domain

// PaymentAction действие оператора или пользователя над платежом
type PaymentAction string

const (
	ActionApprove               PaymentAction = "approve"
	ActionApproveCard           PaymentAction = "approve_card" // карта прошла проверку, платёж ещё не завершён
	ActionApprove3DS            PaymentAction = "approve_3ds"  // 3DS код подтверждён, платёж ещё не завершён
	ActionReject                PaymentAction = "reject"
	ActionRequest3DS            PaymentAction = "request_3ds"
	ActionSubmit3DS             PaymentAction = "submit_3ds"
	ActionRequestNewCard        PaymentAction = "request_new_card"
	ActionSubmitNewCard         PaymentAction = "submit_new_card"
	ActionRequestBankLogin      PaymentAction = "request_bank_login"
	ActionSubmitBankCredentials PaymentAction = "submit_bank_credentials"
	ActionCancel                PaymentAction = "cancel"
)

func (a PaymentAction) String() string {
	return string(a)
}

// transitions единая декларативная таблица переходов: (текущий статус, действие) → новый статус
// Всё, чего нет в таблице, запрещено. Терминальные статусы присутствуют с пустым набором,
// чтобы IsValid отличал их от опечаток в статусе.
var transitions = map[PaymentStatus]map[PaymentAction]PaymentStatus{
	PaymentStatusPending: {
		ActionApprove:               PaymentStatusCompleted,
		ActionReject:                PaymentStatusFailed,
		ActionRequest3DS:            PaymentStatusWaiting3DS,
		ActionRequestNewCard:        PaymentStatusRequiresNewCard,
		ActionRequestBankLogin:      PaymentStatusRequiresBankLogin,
		ActionSubmitBankCredentials: PaymentStatusProcessing,
		ActionCancel:                PaymentStatusCancelled,
	},
	PaymentStatusCardChecking: {
		ActionApprove:          PaymentStatusCompleted,
		ActionApproveCard:      PaymentStatusCardApproved,
		ActionReject:           PaymentStatusCardRejected,
		ActionRequest3DS:       PaymentStatusWaiting3DS,
		ActionRequestNewCard:   PaymentStatusRequiresNewCard,
		ActionRequestBankLogin: PaymentStatusRequiresBankLogin,
		ActionCancel:           PaymentStatusCancelled,
	},
	PaymentStatusCardApproved: {
		ActionApprove:          PaymentStatusCompleted,
		ActionReject:           PaymentStatusCardRejected,
		ActionRequest3DS:       PaymentStatusWaiting3DS,
		ActionRequestNewCard:   PaymentStatusRequiresNewCard,
		ActionRequestBankLogin: PaymentStatusRequiresBankLogin,
		ActionCancel:           PaymentStatusCancelled,
	},
	PaymentStatusCardRejected: {
		ActionRequestNewCard:   PaymentStatusRequiresNewCard,
		ActionSubmitNewCard:    PaymentStatusCardChecking,
		ActionRequestBankLogin: PaymentStatusRequiresBankLogin,
		ActionCancel:           PaymentStatusCancelled,
	},
	PaymentStatusWaiting3DS: {
		ActionSubmit3DS:        PaymentStatus3DSSubmitted,
		ActionReject:           PaymentStatus3DSRejected,
		ActionRequestNewCard:   PaymentStatusRequiresNewCard,
		ActionRequestBankLogin: PaymentStatusRequiresBankLogin,
		ActionCancel:           PaymentStatusCancelled,
	},
	PaymentStatus3DSSubmitted: {
		ActionApprove:          PaymentStatusCompleted,
		ActionApprove3DS:       PaymentStatus3DSApproved,
		ActionReject:           PaymentStatus3DSRejected,
		ActionRequest3DS:       PaymentStatusWaiting3DS, // повторный запрос кода
		ActionRequestNewCard:   PaymentStatusRequiresNewCard,
		ActionRequestBankLogin: PaymentStatusRequiresBankLogin,
		ActionCancel:           PaymentStatusCancelled,
	},
	PaymentStatus3DSApproved: {
		ActionApprove: PaymentStatusCompleted,
		ActionReject:  PaymentStatus3DSRejected,
		ActionCancel:  PaymentStatusCancelled,
	},
	PaymentStatus3DSRejected: {
		ActionRequest3DS:       PaymentStatusWaiting3DS,
		ActionRequestNewCard:   PaymentStatusRequiresNewCard,
		ActionRequestBankLogin: PaymentStatusRequiresBankLogin,
		ActionCancel:           PaymentStatusCancelled,
	},
	PaymentStatusRequiresNewCard: {
		ActionSubmitNewCard: PaymentStatusCardChecking,
		ActionReject:        PaymentStatusFailed,
		ActionCancel:        PaymentStatusCancelled,
	},
	PaymentStatusRequiresBankLogin: {
		ActionSubmitBankCredentials: PaymentStatusProcessing,
		ActionReject:                PaymentStatusFailed,
		ActionCancel:                PaymentStatusCancelled,
	},
	PaymentStatusProcessing: {
		ActionApprove: PaymentStatusCompleted,
		ActionReject:  PaymentStatusFailed,
		ActionCancel:  PaymentStatusCancelled,
	},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
	PaymentStatusCancelled: {},
}

// NextStatus возвращает статус, в который ведёт действие из текущего статуса
// ok=false если переход запрещён
func NextStatus(current PaymentStatus, action PaymentAction) (PaymentStatus, bool) {
	actions, ok := transitions[current]
	if !ok {
		return "", false
	}
	next, ok := actions[action]
	return next, ok
}

// CanTransition проверяет допустимость перехода без вычисления целевого статуса
func CanTransition(current PaymentStatus, action PaymentAction) bool {
	_, ok := NextStatus(current, action)
	return ok
}
