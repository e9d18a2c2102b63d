package main

import "dmchat/internal"

type Config struct {
	internal.Config
	Username string `env:"CHAT_USERNAME,required=true"`
	Password string `env:"CHAT_PASSWORD,required=true"`
}
