package domain

// User-facing notice texts.
const (
	NoticeWelcome       = "Welcome to the anonymous chat!\n\nJoin the queue to find a partner."
	NoticeQueued        = "You have been added to the queue. Please wait..."
	NoticeAlreadyQueued = "You are already in the queue."
	NoticeAlreadyPaired = "You are already in a chat."
	NoticePartnerFound  = "Partner found! Start chatting."
	NoticePartnerLeft   = "Your partner has ended the chat."
	NoticeYouLeft       = "You have ended the chat."
	NoticeDequeued      = "You have been removed from the queue."
	NoticeNotInSession  = "You are not in a chat or in the queue."
	PlaceholderDecode   = "Error: the message could not be decrypted."
	PlaceholderBadUTF8  = "Error: the message is not valid UTF-8."
)
