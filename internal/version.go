package internal

// Version is the gemtrans release version
const Version = "0.3.0"
