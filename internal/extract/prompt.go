package extract

const textSystemPrompt = "You are a helpful assistant that extracts specific deal information from restaurant website text. " +
	"Your task is to identify the dish on special, the day it's offered, and its price. " +
	"Provide only this information in a JSON format with keys 'dish', 'price', and 'day_of_week'. " +
	"If any information is missing, use null for that key. " +
	"For day_of_week, use lowercase day names like 'monday', 'tuesday', etc."

const visionSystemPrompt = "You are a helpful assistant that extracts specific deal information from images. " +
	"Your task is to identify the dish on special, the day it's offered, and its price. " +
	"Provide only this information in a JSON format with keys 'dish', 'price', and 'day_of_week'. " +
	"If you have any additional information, you can add a new 'notes' key and write it down there. " +
	"If any information is missing, use null for that key. " +
	"If there are multiple deals, return a list of JSON dictionaries. " +
	"For day_of_week, use lowercase day names like 'monday', 'tuesday', etc."

const visionUserPrompt = "Extract the deal information from the image and return it in JSON format."

func buildTextPrompt(text string) string {
	return "Extract the deal information from the following text and return it in JSON format:\n\n" + text
}
