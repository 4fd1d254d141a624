package command

// Command constants for the chat commands the bot understands.
const (
	CommandStart   = "/start"
	CommandHelp    = "/help"
	CommandWhoami  = "/whoami"
	CommandWallet  = "/wallet"
	CommandDeposit = "/deposit"
	CommandFaucet  = "/faucet"
	CommandSend    = "/send"
	CommandOrder   = "/order"
	CommandOrders  = "/orders"
)
