package services

// Services defined in this package:
// - AuthService: registration, login, token refresh and profile management
// - CommunityService: community lifecycle and membership management
// - ChatService: channel messages, threads, reactions, pinning and Q&A
// - ResourceService: shared files and links with likes and download tracking
// - EventService: community calendar events and RSVPs
